// Package indexer orchestrates an indexing pass: glob expansion, per-file
// change-skip via content hash, bounded-concurrency parse -> embed ->
// store batches, and an aggregate IndexingReport. Grounded on the
// teacher's batching pattern in internal/store/vector_store.go
// (backfillVecIndex's batch size and per-item error collection),
// generalized to a full glob-driven pass and moved onto
// golang.org/x/sync/errgroup for the concurrency bound.
package indexer

import (
	"context"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"swissarmyhammer/internal/embedding"
	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/hash"
	"swissarmyhammer/internal/index"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/parser"
)

// FileError records a per-file failure without aborting the pass.
type FileError struct {
	Path string
	Err  error
}

// Report is the aggregate result of one indexing pass, per §4.5.
type Report struct {
	Processed       int
	Succeeded       int
	Failed          int
	TotalChunks     int
	TotalEmbeddings int
	Errors          []FileError
}

// Indexer drives the parse -> embed -> store pipeline over a glob
// expansion.
type Indexer struct {
	Store       *index.Store
	Parsers     *parser.Registry
	Engine      embedding.EmbeddingEngine
	Concurrency int
}

// New builds an Indexer. concurrency <= 0 defaults to 4.
func New(store *index.Store, parsers *parser.Registry, engine embedding.EmbeddingEngine, concurrency int) *Indexer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Indexer{Store: store, Parsers: parsers, Engine: engine, Concurrency: concurrency}
}

// Index runs one indexing pass over the glob expansion of patterns. Unless
// force is set, files whose content hash matches the stored hash are
// skipped. Per-file errors never abort the pass; they are collected into
// the returned Report.
func (ix *Indexer) Index(ctx context.Context, patterns []string, force bool) (*Report, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "Indexer.Index")
	defer timer.Stop()

	paths, err := expandGlobs(patterns)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "indexer.Index", err)
	}

	report := &Report{}
	var mu sync.Mutex

	var queue []string
	for _, p := range paths {
		ext := extOf(p)
		if !ix.Parsers.SupportsExtension(ext) {
			continue
		}

		content, readErr := os.ReadFile(p)
		if readErr != nil {
			mu.Lock()
			report.Processed++
			report.Failed++
			report.Errors = append(report.Errors, FileError{Path: p, Err: errs.Wrap(errs.IO, "indexer.Index read", readErr).WithPath(p)})
			mu.Unlock()
			continue
		}
		newHash := hash.Bytes(content)

		if !force {
			existing, ok, hashErr := ix.Store.FileHash(p)
			if hashErr == nil && ok && existing == newHash {
				logging.IndexDebug("indexer: skipping unchanged file %s", p)
				continue
			}
		}
		queue = append(queue, p)
	}

	logging.Index("indexer: indexing pass over %d candidate files (%d queued, force=%v)", len(paths), len(queue), force)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.Concurrency)

	for _, p := range queue {
		p := p
		g.Go(func() error {
			outcome := ix.indexFile(gctx, p)
			mu.Lock()
			defer mu.Unlock()
			report.Processed++
			if outcome.err != nil {
				report.Failed++
				report.Errors = append(report.Errors, FileError{Path: p, Err: outcome.err})
			} else {
				report.Succeeded++
				report.TotalChunks += outcome.chunks
				report.TotalEmbeddings += outcome.embeddings
			}
			return nil // per-file errors are recoverable, never abort the group
		})
	}
	// errgroup's returned error is always nil here since indexFile errors
	// are captured in Report instead of propagated; Wait only to join.
	_ = g.Wait()

	logging.Index("indexer: pass complete: processed=%d succeeded=%d failed=%d chunks=%d embeddings=%d",
		report.Processed, report.Succeeded, report.Failed, report.TotalChunks, report.TotalEmbeddings)
	return report, nil
}

type fileOutcome struct {
	chunks     int
	embeddings int
	err        error
}

func (ix *Indexer) indexFile(ctx context.Context, path string) fileOutcome {
	content, err := os.ReadFile(path)
	if err != nil {
		return fileOutcome{err: errs.Wrap(errs.IO, "indexer.indexFile read", err).WithPath(path)}
	}

	chunks, err := ix.Parsers.Parse(path, content)
	if err != nil {
		return fileOutcome{err: err}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := embedChunks(ctx, ix.Engine, texts)
	if err != nil {
		return fileOutcome{err: errs.Wrap(errs.ModelUnavailable, "indexer.indexFile embed", err).WithPath(path)}
	}
	if len(vectors) != len(chunks) {
		return fileOutcome{err: errs.New(errs.Internal, "indexer.indexFile").WithPath(path).
			WithHint("embedding batch size did not match chunk count")}
	}

	file := index.IndexedFile{
		FileID:      hash.Bytes([]byte(path)),
		Path:        path,
		Language:    languageOf(chunks),
		ContentHash: hash.Bytes(content),
		ChunkCount:  len(chunks),
		IndexedAt:   time.Now(),
	}

	if err := ix.Store.UpsertFile(ctx, file, chunks, vectors); err != nil {
		return fileOutcome{err: err}
	}

	return fileOutcome{chunks: len(chunks), embeddings: len(vectors)}
}

// embedChunks embeds code chunk content for indexing, using the
// RETRIEVAL_DOCUMENT task type when the engine is task-aware so the
// corresponding search query (embedded with RETRIEVAL_QUERY/
// CODE_RETRIEVAL_QUERY) retrieves against a matching vector space.
func embedChunks(ctx context.Context, engine embedding.EmbeddingEngine, texts []string) ([][]float32, error) {
	taskType := embedding.SelectTaskType(embedding.ContentTypeCode, false)
	if batchAware, ok := engine.(embedding.TaskTypeBatchAwareEngine); ok {
		return batchAware.EmbedBatchWithTask(ctx, texts, taskType)
	}
	return engine.EmbedBatch(ctx, texts)
}

func languageOf(chunks []parser.CodeChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0].Language
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[i:]
		}
	}
	return ""
}
