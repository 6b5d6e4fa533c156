package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"swissarmyhammer/internal/embedding"
	"swissarmyhammer/internal/index"
	"swissarmyhammer/internal/parser"
)

// fakeEngine is a deterministic stand-in for an embedding.EmbeddingEngine:
// it maps text to a 26-dimensional lowercase letter-frequency vector, so
// texts sharing more letters score more similar without needing a real
// model. It also records the task type it was last asked to embed with,
// to verify the query-side task-type wiring.
type fakeEngine struct {
	lastTaskType string
}

func (f *fakeEngine) vectorOf(text string) []float32 {
	var v [26]float32
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
		if r >= 'A' && r <= 'Z' {
			v[r-'A']++
		}
	}
	return v[:]
}

func (f *fakeEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vectorOf(text), nil
}

func (f *fakeEngine) EmbedWithTask(ctx context.Context, text, taskType string) ([]float32, error) {
	f.lastTaskType = taskType
	return f.vectorOf(text), nil
}

func (f *fakeEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = f.vectorOf(t)
	}
	return out, nil
}

func (f *fakeEngine) Dimensions() int { return 26 }
func (f *fakeEngine) Name() string    { return "fake" }
func (f *fakeEngine) ModelInfo() embedding.ModelInfo {
	return embedding.ModelInfo{Identifier: "fake", Dimensions: 26}
}

func newTestSearcher(t *testing.T) (*Searcher, *fakeEngine) {
	t.Helper()
	store, err := index.Open(filepath.Join(t.TempDir(), "search.db"), 26)
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	engine := &fakeEngine{}
	return New(store, engine), engine
}

func seedChunk(t *testing.T, store *index.Store, path, content string, line int, language string) parser.CodeChunk {
	t.Helper()
	c := parser.NewChunk(path, language, content, line, line, parser.KindFunction)
	file := index.IndexedFile{FileID: path, Path: path, Language: language, ContentHash: "h", ChunkCount: 1, IndexedAt: time.Now()}
	vec := (&fakeEngine{}).vectorOf(content)
	if err := store.UpsertFile(context.Background(), file, []parser.CodeChunk{c}, [][]float32{vec}); err != nil {
		t.Fatalf("seedChunk UpsertFile: %v", err)
	}
	return c
}

func TestSearchOrdersResultsByDescendingScore(t *testing.T) {
	s, _ := newTestSearcher(t)
	store := s.Store

	seedChunk(t, store, "a.py", "aaaa", 1, "python")
	seedChunk(t, store, "b.py", "aabb", 2, "python")
	seedChunk(t, store, "c.py", "zzzz", 3, "python")

	results, err := s.Search(context.Background(), Request{Text: "aaaa", Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not monotonically non-increasing: %+v", results)
		}
	}
	if results[0].Chunk.FilePath != "a.py" {
		t.Errorf("closest match = %s, want a.py", results[0].Chunk.FilePath)
	}
}

func TestSearchUsesQueryTaskTypeWhenEngineIsTaskAware(t *testing.T) {
	s, engine := newTestSearcher(t)
	seedChunk(t, s.Store, "a.py", "aaaa", 1, "python")

	if _, err := s.Search(context.Background(), Request{Text: "aaaa", Limit: 10}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if engine.lastTaskType != "RETRIEVAL_QUERY" {
		t.Errorf("lastTaskType = %q, want RETRIEVAL_QUERY", engine.lastTaskType)
	}
}

func TestSearchFiltersByLanguage(t *testing.T) {
	s, _ := newTestSearcher(t)
	seedChunk(t, s.Store, "a.py", "aaaa", 1, "python")
	seedChunk(t, s.Store, "a.rs", "aaaa", 1, "rust")

	results, err := s.Search(context.Background(), Request{Text: "aaaa", Limit: 10, LanguageFilter: "rust"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.Chunk.Language != "rust" {
			t.Errorf("result language = %s, want rust only", r.Chunk.Language)
		}
	}
}

func TestSearchRespectsLimit(t *testing.T) {
	s, _ := newTestSearcher(t)
	for i := 0; i < 5; i++ {
		seedChunk(t, s.Store, "a.py", "aaaa", i+1, "python")
	}
	results, err := s.Search(context.Background(), Request{Text: "aaaa", Limit: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) > 2 {
		t.Fatalf("Search returned %d results, want at most 2", len(results))
	}
}

func TestFindSimilarExcludesTheChunkItself(t *testing.T) {
	s, _ := newTestSearcher(t)
	target := seedChunk(t, s.Store, "a.py", "aaaa", 1, "python")
	seedChunk(t, s.Store, "b.py", "aaaa", 1, "python")

	results, err := s.FindSimilar(context.Background(), target, 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	for _, r := range results {
		if r.Chunk.ID == target.ID {
			t.Fatalf("FindSimilar included the queried chunk itself: %+v", r)
		}
	}
}

func TestMultiQueryKeepsMaxScorePerChunk(t *testing.T) {
	s, _ := newTestSearcher(t)
	seedChunk(t, s.Store, "a.py", "aaaa", 1, "python")

	results, err := s.MultiQuery(context.Background(), []string{"aaaa", "aaab"}, 10, 10)
	if err != nil {
		t.Fatalf("MultiQuery: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("MultiQuery returned %d distinct chunks, want 1", len(results))
	}
	// "aaaa" matches exactly (cosine 1.0); "aaab" scores 3/sqrt(10) ~ 0.949.
	if results[0].Score < 0.99 {
		t.Errorf("Score = %v, want the max across queries (~1.0)", results[0].Score)
	}
}

func TestExcerptCentersOnLiteralMatch(t *testing.T) {
	content := "the quick brown fox jumps over the lazy dog"
	got := excerpt(content, "brown fox")
	if got == "" {
		t.Fatal("excerpt returned empty string for a literal match")
	}
}

func TestExcerptFallsBackToFirstLinesWithoutMatch(t *testing.T) {
	content := "line one here\nline two here\nline three here"
	got := excerpt(content, "no such phrase anywhere")
	if got != "line one here line two here" {
		t.Errorf("excerpt fallback = %q, want first two non-blank lines", got)
	}
}
