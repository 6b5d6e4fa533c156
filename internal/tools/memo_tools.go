package tools

import (
	"context"
	"fmt"
	"strings"
)

func registerMemoTools(r *Registry, tc *ToolContext) error {
	create := &Tool{
		Name:        "memo/create",
		Description: "Create a new memo file.",
		Category:    CategoryMemo,
		Schema: ToolSchema{
			Required: []string{"title"},
			Properties: map[string]Property{
				"title": {Type: "string", Description: "memo title"},
				"body":  {Type: "string", Description: "memo body"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			body, _ := args["body"].(string)
			m, err := tc.Memos.Create(title, body)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("created %q", m.Title), nil
		},
	}

	get := &Tool{
		Name:        "memo/get",
		Description: "Fetch one memo by title.",
		Category:    CategoryMemo,
		Schema: ToolSchema{
			Required:   []string{"title"},
			Properties: map[string]Property{"title": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			m, err := tc.Memos.Get(title)
			if err != nil {
				return "", err
			}
			return m.Body, nil
		},
	}

	update := &Tool{
		Name:        "memo/update",
		Description: "Overwrite a memo's body.",
		Category:    CategoryMemo,
		Schema: ToolSchema{
			Required:   []string{"title", "body"},
			Properties: map[string]Property{"title": {Type: "string"}, "body": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			body, _ := args["body"].(string)
			if err := tc.Memos.Update(title, body); err != nil {
				return "", err
			}
			return fmt.Sprintf("updated %q", title), nil
		},
	}

	del := &Tool{
		Name:        "memo/delete",
		Description: "Delete a memo.",
		Category:    CategoryMemo,
		Schema: ToolSchema{
			Required:   []string{"title"},
			Properties: map[string]Property{"title": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			title, _ := args["title"].(string)
			if err := tc.Memos.Delete(title); err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %q", title), nil
		},
	}

	list := &Tool{
		Name:        "memo/list",
		Description: "List every memo title.",
		Category:    CategoryMemo,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			memos, err := tc.Memos.List()
			if err != nil {
				return "", err
			}
			var b strings.Builder
			for _, m := range memos {
				b.WriteString(m.Title)
				b.WriteString("\n")
			}
			return b.String(), nil
		},
	}

	search := &Tool{
		Name:        "memo/search",
		Description: "Case-insensitive substring search over memo titles and bodies.",
		Category:    CategoryMemo,
		Schema: ToolSchema{
			Required:   []string{"query"},
			Properties: map[string]Property{"query": {Type: "string"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			memos, err := tc.Memos.Search(query)
			if err != nil {
				return "", err
			}
			var b strings.Builder
			for _, m := range memos {
				b.WriteString(m.Title)
				b.WriteString("\n")
			}
			return b.String(), nil
		},
	}

	getAllContext := &Tool{
		Name:        "memo/get_all_context",
		Description: "Concatenate every memo's body for use as context.",
		Category:    CategoryMemo,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return tc.Memos.AllContext()
		},
	}

	for _, t := range []*Tool{create, get, update, del, list, search, getAllContext} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
