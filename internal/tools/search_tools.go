package tools

import (
	"context"
	"fmt"
	"strings"

	"swissarmyhammer/internal/search"
)

func floatArg(args map[string]any, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func registerSearchTools(r *Registry, tc *ToolContext) error {
	index := &Tool{
		Name:        "search/index",
		Description: "Index files matching the given glob patterns for semantic search.",
		Category:    CategorySearch,
		Schema: ToolSchema{
			Required: []string{"patterns"},
			Properties: map[string]Property{
				"patterns": {Type: "array", Description: "glob patterns", Items: &PropertyItems{Type: "string"}},
				"force":    {Type: "boolean", Description: "reindex even unchanged files"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			patterns := stringSliceArg(args, "patterns")
			force, _ := args["force"].(bool)
			report, err := tc.Indexer.Index(ctx, patterns, force)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("processed=%d succeeded=%d failed=%d chunks=%d embeddings=%d",
				report.Processed, report.Succeeded, report.Failed, report.TotalChunks, report.TotalEmbeddings), nil
		},
	}

	query := &Tool{
		Name:        "search/query",
		Description: "Semantic search over the indexed corpus.",
		Category:    CategorySearch,
		Schema: ToolSchema{
			Required: []string{"text"},
			Properties: map[string]Property{
				"text":      {Type: "string", Description: "query text"},
				"limit":     {Type: "integer", Description: "max results"},
				"threshold": {Type: "number", Description: "minimum similarity score"},
				"language":  {Type: "string", Description: "restrict to a language"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			text, _ := args["text"].(string)
			req := search.Request{
				Text:           text,
				Limit:          intArg(args, "limit", 10),
				Threshold:      floatArg(args, "threshold", 0),
				LanguageFilter: stringArg(args, "language"),
			}
			results, err := tc.Searcher.Search(ctx, req)
			if err != nil {
				return "", err
			}
			var b strings.Builder
			for _, res := range results {
				fmt.Fprintf(&b, "%.3f\t%s:%d-%d\t%s\n", res.Score, res.Chunk.FilePath, res.Chunk.StartLine, res.Chunk.EndLine, res.Excerpt)
			}
			return b.String(), nil
		},
	}

	for _, t := range []*Tool{index, query} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}
