// Package parser extracts semantic chunks from source files using
// language-specific grammars, falling back to a single whole-file chunk
// when no finer structure can be recovered.
package parser

import (
	"fmt"

	"swissarmyhammer/internal/hash"
)

// ChunkKind classifies the semantic role of a CodeChunk.
type ChunkKind string

const (
	KindFunction  ChunkKind = "function"
	KindClass     ChunkKind = "class"
	KindModule    ChunkKind = "module"
	KindImport    ChunkKind = "import"
	KindPlaintext ChunkKind = "plaintext"
)

// CodeChunk is a contiguous, semantically meaningful region of a source
// file, as named in the data model.
type CodeChunk struct {
	ID          string
	FilePath    string
	Language    string
	Content     string
	StartLine   int // 1-based, inclusive
	EndLine     int // 1-based, inclusive
	Kind        ChunkKind
	ContentHash string
}

// NewChunk builds a CodeChunk, deriving ID and ContentHash from its fields.
// ID = hash(file_path, start_line, kind), matching the data model's
// identity rule.
func NewChunk(filePath, language, content string, startLine, endLine int, kind ChunkKind) CodeChunk {
	id := hash.Bytes([]byte(fmt.Sprintf("%s:%d:%s", filePath, startLine, kind)))
	return CodeChunk{
		ID:          id,
		FilePath:    filePath,
		Language:    language,
		Content:     content,
		StartLine:   startLine,
		EndLine:     endLine,
		Kind:        kind,
		ContentHash: hash.Bytes([]byte(content)),
	}
}
