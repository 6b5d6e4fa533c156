// Package index implements the embedded analytical database behind
// semantic search: three SQLite relations (indexed_files, code_chunks,
// embeddings) with atomic per-file upsert and a cosine-similarity k-NN
// query, backed by sqlite-vec when the cgo driver is available and a
// brute-force fallback otherwise. Grounded on the teacher's
// internal/store/local_core.go (PRAGMA setup, single-writer pooling) and
// internal/store/vector_store.go (vec0 table, encodeFloat32Slice, the
// ANN/brute-force split) — generalized from the teacher's 13-table
// agent-memory schema down to just this spec's three relations.
package index

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/parser"
)

// IndexedFile mirrors the data model's IndexedFile row.
type IndexedFile struct {
	FileID      string
	Path        string
	Language    string
	ContentHash string
	ChunkCount  int
	IndexedAt   time.Time
}

// ScoredChunk is one similarity_search result: a chunk identifier and its
// cosine similarity to the query vector.
type ScoredChunk struct {
	ChunkID string
	Score   float64
}

// Stats is the store's row-count summary.
type Stats struct {
	Files      int
	Chunks     int
	Embeddings int
}

// Store is the embedded vector database. It always lives under
// <repo_root>/.swissarmyhammer/ per §4.4 — callers resolve the repo root
// once and pass the absolute database path in; Store never guesses a
// user-home fallback.
type Store struct {
	db  *sql.DB
	dim int

	mu        sync.RWMutex // guards vectorExt
	vectorExt bool

	pathLocksMu sync.Mutex
	pathLocks   map[string]*sync.Mutex
}

// Open opens (creating if absent) the SQLite database at path and ensures
// the three relations exist. dim is the embedding dimensionality; it is
// used to size the optional sqlite-vec virtual table.
func Open(path string, dim int) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errs.Wrap(errs.IO, "index.Open", err).WithPath(path)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "index.Open", err).WithPath(path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logging.IndexDebug("index: pragma %q failed: %v", pragma, err)
		}
	}

	s := &Store{db: db, dim: dim, pathLocks: make(map[string]*sync.Mutex)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	s.initVecIndex(dim)

	logging.Index("index: opened store at %s (dim=%d, vec0=%v)", path, dim, s.vectorExt)
	return s, nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS indexed_files (
			file_id TEXT PRIMARY KEY,
			path TEXT UNIQUE NOT NULL,
			language TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			chunk_count INTEGER NOT NULL,
			indexed_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS code_chunks (
			id TEXT PRIMARY KEY,
			file_id TEXT NOT NULL REFERENCES indexed_files(file_id) ON DELETE CASCADE,
			file_path TEXT NOT NULL,
			language TEXT NOT NULL,
			content TEXT NOT NULL,
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			kind TEXT NOT NULL,
			content_hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_code_chunks_file_id ON code_chunks(file_id)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			chunk_id TEXT PRIMARY KEY REFERENCES code_chunks(id) ON DELETE CASCADE,
			vector BLOB NOT NULL,
			dim INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errs.Wrap(errs.IO, "index.initSchema", err)
		}
	}
	return nil
}

// initVecIndex attempts to create the sqlite-vec virtual table; failure is
// not fatal, it just keeps the store on the brute-force query path.
func (s *Store) initVecIndex(dim int) {
	if dim <= 0 {
		return
	}
	stmt := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(chunk_id TEXT PRIMARY KEY, embedding float[%d])", dim)
	if _, err := s.db.Exec(stmt); err == nil {
		s.mu.Lock()
		s.vectorExt = true
		s.mu.Unlock()
		logging.Index("index: sqlite-vec enabled (dim=%d)", dim)
	} else {
		logging.Get(logging.CategoryIndex).Warn("index: sqlite-vec unavailable, using brute-force cosine search: %v", err)
	}
}

func (s *Store) hasVec() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectorExt
}

// lockPath returns the per-path mutex serializing writers to path, per the
// "writers are serialized at the per-file boundary" invariant.
func (s *Store) lockPath(path string) func() {
	s.pathLocksMu.Lock()
	l, ok := s.pathLocks[path]
	if !ok {
		l = &sync.Mutex{}
		s.pathLocks[path] = l
	}
	s.pathLocksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// UpsertFile atomically replaces all rows for file.Path: deletes prior
// chunks/embeddings for the path, then inserts the new file row, chunks,
// and embeddings in a single transaction. Writes to the same path are
// serialized.
func (s *Store) UpsertFile(ctx context.Context, file IndexedFile, chunks []parser.CodeChunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return errs.New(errs.Internal, "index.UpsertFile").WithPath(file.Path).
			WithHint(fmt.Sprintf("chunk/embedding count mismatch: %d != %d", len(chunks), len(embeddings)))
	}

	unlock := s.lockPath(file.Path)
	defer unlock()

	timer := logging.StartTimer(logging.CategoryIndex, "UpsertFile")
	defer timer.Stop()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.IO, "index.UpsertFile", err).WithPath(file.Path)
	}
	defer tx.Rollback()

	if err := s.deleteFileTx(tx, file.Path); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexed_files (file_id, path, language, content_hash, chunk_count, indexed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		file.FileID, file.Path, file.Language, file.ContentHash, len(chunks), file.IndexedAt.Unix(),
	); err != nil {
		return errs.Wrap(errs.IO, "index.UpsertFile insert indexed_files", err).WithPath(file.Path)
	}

	chunkStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO code_chunks (id, file_id, file_path, language, content, start_line, end_line, kind, content_hash) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errs.Wrap(errs.IO, "index.UpsertFile prepare code_chunks", err).WithPath(file.Path)
	}
	defer chunkStmt.Close()

	embStmt, err := tx.PrepareContext(ctx, `INSERT INTO embeddings (chunk_id, vector, dim) VALUES (?, ?, ?)`)
	if err != nil {
		return errs.Wrap(errs.IO, "index.UpsertFile prepare embeddings", err).WithPath(file.Path)
	}
	defer embStmt.Close()

	var vecStmt *sql.Stmt
	if s.hasVec() {
		vecStmt, err = tx.PrepareContext(ctx, `INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)`)
		if err != nil {
			return errs.Wrap(errs.IO, "index.UpsertFile prepare vec_chunks", err).WithPath(file.Path)
		}
		defer vecStmt.Close()
	}

	for i, c := range chunks {
		if _, err := chunkStmt.ExecContext(ctx, c.ID, file.FileID, c.FilePath, c.Language, c.Content, c.StartLine, c.EndLine, string(c.Kind), c.ContentHash); err != nil {
			return errs.Wrap(errs.IO, "index.UpsertFile insert code_chunks", err).WithPath(file.Path).WithID(c.ID)
		}
		vec := embeddings[i]
		if _, err := embStmt.ExecContext(ctx, c.ID, encodeVector(vec), len(vec)); err != nil {
			return errs.Wrap(errs.IO, "index.UpsertFile insert embeddings", err).WithPath(file.Path).WithID(c.ID)
		}
		if vecStmt != nil {
			if _, err := vecStmt.ExecContext(ctx, c.ID, encodeVector(vec)); err != nil {
				logging.Get(logging.CategoryIndex).Warn("index: vec_chunks insert failed for %s: %v", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.IO, "index.UpsertFile commit", err).WithPath(file.Path)
	}
	return nil
}

// FileHash returns the stored content hash for path, and whether a row
// exists at all. Used by the indexer to skip unchanged files.
func (s *Store) FileHash(path string) (string, bool, error) {
	var hash string
	err := s.db.QueryRow(`SELECT content_hash FROM indexed_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.Wrap(errs.IO, "index.FileHash", err).WithPath(path)
	}
	return hash, true, nil
}

// RemoveFile deletes path's indexed_files row, cascading to its chunks and
// embeddings.
func (s *Store) RemoveFile(path string) error {
	unlock := s.lockPath(path)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errs.Wrap(errs.IO, "index.RemoveFile", err).WithPath(path)
	}
	defer tx.Rollback()
	if err := s.deleteFileTx(tx, path); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.IO, "index.RemoveFile commit", err).WithPath(path)
	}
	return nil
}

func (s *Store) deleteFileTx(tx *sql.Tx, path string) error {
	rows, err := tx.Query(`SELECT id FROM code_chunks WHERE file_path = ?`, path)
	if err != nil {
		return errs.Wrap(errs.IO, "index.deleteFileTx select chunk ids", err).WithPath(path)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return errs.Wrap(errs.IO, "index.deleteFileTx scan", err).WithPath(path)
		}
		ids = append(ids, id)
	}
	rows.Close()

	if s.hasVec() {
		for _, id := range ids {
			if _, err := tx.Exec(`DELETE FROM vec_chunks WHERE chunk_id = ?`, id); err != nil {
				logging.Get(logging.CategoryIndex).Warn("index: vec_chunks delete failed for %s: %v", id, err)
			}
		}
	}
	if _, err := tx.Exec(`DELETE FROM embeddings WHERE chunk_id IN (SELECT id FROM code_chunks WHERE file_path = ?)`, path); err != nil {
		return errs.Wrap(errs.IO, "index.deleteFileTx delete embeddings", err).WithPath(path)
	}
	if _, err := tx.Exec(`DELETE FROM code_chunks WHERE file_path = ?`, path); err != nil {
		return errs.Wrap(errs.IO, "index.deleteFileTx delete code_chunks", err).WithPath(path)
	}
	if _, err := tx.Exec(`DELETE FROM indexed_files WHERE path = ?`, path); err != nil {
		return errs.Wrap(errs.IO, "index.deleteFileTx delete indexed_files", err).WithPath(path)
	}
	return nil
}

// SimilaritySearch ranks stored chunks by cosine similarity to query,
// filters by threshold, and returns at most k results ordered descending
// by score. Uses sqlite-vec's vec_distance_cosine when available,
// falling back to an in-process brute-force scan otherwise.
func (s *Store) SimilaritySearch(ctx context.Context, query []float32, k int, threshold float64) ([]ScoredChunk, error) {
	if k <= 0 {
		k = 10
	}
	if s.hasVec() {
		results, err := s.similaritySearchVec(ctx, query, k, threshold)
		if err == nil {
			return results, nil
		}
		logging.Get(logging.CategoryIndex).Warn("index: vec0 search failed, falling back to brute force: %v", err)
	}
	return s.similaritySearchBruteForce(ctx, query, k, threshold)
}

func (s *Store) similaritySearchVec(ctx context.Context, query []float32, k int, threshold float64) ([]ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, vec_distance_cosine(embedding, ?) AS dist FROM vec_chunks ORDER BY dist ASC LIMIT ?`,
		encodeVector(query), k*4+k, // overfetch before thresholding
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var id string
		var dist float64
		if err := rows.Scan(&id, &dist); err != nil {
			continue
		}
		score := 1 - dist
		if score < threshold {
			continue
		}
		results = append(results, ScoredChunk{ChunkID: id, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *Store) similaritySearchBruteForce(ctx context.Context, query []float32, k int, threshold float64) ([]ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, vector FROM embeddings`)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "index.similaritySearchBruteForce", err)
	}
	defer rows.Close()

	var results []ScoredChunk
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			continue
		}
		vec := decodeVector(blob)
		score := cosineSimilarity(query, vec)
		if score < threshold {
			continue
		}
		results = append(results, ScoredChunk{ChunkID: id, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetChunk fetches a single chunk by id, or (nil, nil) if not found.
func (s *Store) GetChunk(id string) (*parser.CodeChunk, error) {
	row := s.db.QueryRow(`SELECT id, file_path, language, content, start_line, end_line, kind, content_hash FROM code_chunks WHERE id = ?`, id)
	var c parser.CodeChunk
	var kind string
	if err := row.Scan(&c.ID, &c.FilePath, &c.Language, &c.Content, &c.StartLine, &c.EndLine, &kind, &c.ContentHash); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errs.Wrap(errs.IO, "index.GetChunk", err).WithID(id)
	}
	c.Kind = parser.ChunkKind(kind)
	return &c, nil
}

// Stats reports row counts across the three relations.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM indexed_files`).Scan(&st.Files); err != nil {
		return st, errs.Wrap(errs.IO, "index.Stats", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM code_chunks`).Scan(&st.Chunks); err != nil {
		return st, errs.Wrap(errs.IO, "index.Stats", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&st.Embeddings); err != nil {
		return st, errs.Wrap(errs.IO, "index.Stats", err)
	}
	return st, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeVector(vec []float32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, vec)
	return buf.Bytes()
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	_ = binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec)
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
