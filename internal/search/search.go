// Package search turns a text query into ranked, excerpted chunk results:
// embed the query, ask the Vector Store for nearest neighbors, hydrate
// chunks, and compute a readable excerpt. Grounded on the teacher's
// VectorRecallSemantic query shape in internal/store/vector_store.go,
// simplified to this spec's single search() contract plus the
// find_similar/multi_query extensions.
package search

import (
	"context"
	"sort"
	"strings"

	"swissarmyhammer/internal/embedding"
	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/index"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/parser"
)

// defaultThreshold is used when a caller passes threshold <= 0.
const defaultThreshold = 0.0

// similarThreshold is find_similar's higher default threshold, since a
// chunk searching for its own near-duplicates should be more selective.
const similarThreshold = 0.5

// Request is the search() contract's argument bundle.
type Request struct {
	Text           string
	Limit          int
	Threshold      float64
	LanguageFilter string
}

// Result is one ranked, excerpted chunk.
type Result struct {
	Chunk   parser.CodeChunk
	Score   float64
	Excerpt string
}

// Searcher answers semantic queries against a Vector Store using an
// Embedding Engine to turn text into vectors.
type Searcher struct {
	Store  *index.Store
	Engine embedding.EmbeddingEngine
}

// New builds a Searcher.
func New(store *index.Store, engine embedding.EmbeddingEngine) *Searcher {
	return &Searcher{Store: store, Engine: engine}
}

// Search embeds req.Text, asks the Vector Store for the top candidates
// above threshold, hydrates chunks, drops any not matching
// LanguageFilter, sorts by score descending (stable on chunk ID), and
// truncates to Limit.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Result, error) {
	timer := logging.StartTimer(logging.CategorySearch, "Searcher.Search")
	defer timer.Stop()

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	queryVec, err := embedQuery(ctx, s.Engine, req.Text)
	if err != nil {
		return nil, errs.Wrap(errs.ModelUnavailable, "search.Search embed", err)
	}

	// Overfetch so post-filtering by language still leaves enough results.
	candidateK := limit
	if req.LanguageFilter != "" {
		candidateK = limit * 4
	}
	scored, err := s.Store.SimilaritySearch(ctx, queryVec, candidateK, threshold)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "search.Search similarity", err)
	}

	results, err := s.hydrate(scored, req.Text, req.LanguageFilter)
	if err != nil {
		return nil, err
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	logging.SearchDebug("search: query=%q returned %d results (limit=%d, threshold=%.3f)", req.Text, len(results), limit, threshold)
	return results, nil
}

// embedQuery embeds a search query, using the RETRIEVAL_QUERY task type
// when the engine is task-aware so it matches the RETRIEVAL_DOCUMENT
// vector space the indexer embedded chunks into.
func embedQuery(ctx context.Context, engine embedding.EmbeddingEngine, text string) ([]float32, error) {
	taskType := embedding.SelectTaskType(embedding.ContentTypeQuery, true)
	if taskAware, ok := engine.(embedding.TaskTypeAwareEngine); ok {
		return taskAware.EmbedWithTask(ctx, text, taskType)
	}
	return engine.Embed(ctx, text)
}

func (s *Searcher) hydrate(scored []index.ScoredChunk, queryText, languageFilter string) ([]Result, error) {
	results := make([]Result, 0, len(scored))
	for _, sc := range scored {
		chunk, err := s.Store.GetChunk(sc.ChunkID)
		if err != nil {
			return nil, errs.Wrap(errs.IO, "search.hydrate", err).WithID(sc.ChunkID)
		}
		if chunk == nil {
			continue
		}
		if languageFilter != "" && chunk.Language != languageFilter {
			continue
		}
		results = append(results, Result{
			Chunk:   *chunk,
			Score:   sc.Score,
			Excerpt: excerpt(chunk.Content, queryText),
		})
	}
	return results, nil
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
}

// FindSimilar uses chunk's own content as the query, with a higher
// default threshold, and removes the input chunk from the results.
func (s *Searcher) FindSimilar(ctx context.Context, chunk parser.CodeChunk, limit int) ([]Result, error) {
	results, err := s.Search(ctx, Request{Text: chunk.Content, Limit: limit + 1, Threshold: similarThreshold})
	if err != nil {
		return nil, err
	}
	out := results[:0]
	for _, r := range results {
		if r.Chunk.ID == chunk.ID {
			continue
		}
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MultiQuery unions results across queries, keyed by chunk ID, keeping the
// maximum score seen for each chunk across the query set.
func (s *Searcher) MultiQuery(ctx context.Context, queries []string, perQueryLimit, overallLimit int) ([]Result, error) {
	best := make(map[string]Result)
	for _, q := range queries {
		results, err := s.Search(ctx, Request{Text: q, Limit: perQueryLimit})
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if existing, ok := best[r.Chunk.ID]; !ok || r.Score > existing.Score {
				best[r.Chunk.ID] = r
			}
		}
	}
	out := make([]Result, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sortResults(out)
	if overallLimit > 0 && len(out) > overallLimit {
		out = out[:overallLimit]
	}
	return out, nil
}

// excerpt computes a readable window into content: if query appears
// literally (case-insensitive), a ~200-char window centered on the match
// with word-boundary trimming and ellipses; otherwise the first two
// non-blank lines, truncated to 200 characters.
func excerpt(content, query string) string {
	const window = 200

	if query != "" {
		lower := strings.ToLower(content)
		idx := strings.Index(lower, strings.ToLower(query))
		if idx >= 0 {
			return centeredWindow(content, idx, len(query), window)
		}
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
		if len(lines) == 2 {
			break
		}
	}
	joined := strings.Join(lines, " ")
	return truncate(joined, window)
}

func centeredWindow(content string, matchStart, matchLen, window int) string {
	half := (window - matchLen) / 2
	if half < 0 {
		half = 0
	}
	start := matchStart - half
	end := matchStart + matchLen + half
	prefix, suffix := "", ""

	if start < 0 {
		start = 0
	} else {
		start = wordBoundaryForward(content, start)
		prefix = "…"
	}
	if end > len(content) {
		end = len(content)
	} else {
		end = wordBoundaryBackward(content, end)
		suffix = "…"
	}
	if start >= end {
		end = start
	}
	return prefix + strings.TrimSpace(content[start:end]) + suffix
}

func wordBoundaryForward(s string, i int) int {
	for i < len(s) && i > 0 && !isSpace(s[i-1]) {
		i++
	}
	return i
}

func wordBoundaryBackward(s string, i int) int {
	for i > 0 && i < len(s) && !isSpace(s[i]) {
		i--
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "…"
}
