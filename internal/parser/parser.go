package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// LanguageParser extracts CodeChunks from the content of a single file. It
// mirrors the shape of the teacher's CodeParser interface, generalized to
// emit this system's CodeChunk rather than Mangle facts.
type LanguageParser interface {
	// Parse extracts chunks from content. path is used only to populate
	// CodeChunk.FilePath and for diagnostics.
	Parse(path string, content []byte) ([]CodeChunk, error)

	// SupportedExtensions lists the file extensions (with leading dot)
	// this parser handles.
	SupportedExtensions() []string

	// Language is the short identifier used in CodeChunk.Language.
	Language() string
}

// Registry dispatches Parse calls to the LanguageParser matching a file's
// extension, falling back to a whole-file plaintext chunk.
type Registry struct {
	byExt map[string]LanguageParser
}

// NewRegistry builds a Registry with tree-sitter backends for
// rust/python/javascript/typescript and a regex-based scanner for dart,
// per the fixed language set in §4.2.
func NewRegistry() (*Registry, error) {
	r := &Registry{byExt: make(map[string]LanguageParser)}

	ts, err := newTreeSitterParsers()
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "parser.NewRegistry", err)
	}
	for _, p := range ts {
		r.register(p)
	}
	r.register(newDartParser())

	return r, nil
}

func (r *Registry) register(p LanguageParser) {
	for _, ext := range p.SupportedExtensions() {
		r.byExt[ext] = p
	}
}

// SupportsExtension reports whether ext (with leading dot) has a
// registered language parser.
func (r *Registry) SupportsExtension(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Parse extracts semantic chunks from the file at path with the given raw
// bytes. Never returns an empty slice for non-empty content: falls back to
// a single plaintext chunk when no grammar matches, or when the matched
// grammar yields zero nodes.
func (r *Registry) Parse(path string, content []byte) ([]CodeChunk, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := r.byExt[ext]
	if !ok {
		logging.ParserDebug("parser: no grammar for %s, falling back to plaintext", path)
		return []CodeChunk{plaintextChunk(path, "", content)}, nil
	}

	chunks, err := p.Parse(path, content)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "parser.Parse", err).WithPath(path)
	}
	if len(chunks) == 0 {
		logging.Get(logging.CategoryParser).Warn("parser: %s produced zero chunks for %s, falling back to plaintext", p.Language(), path)
		return []CodeChunk{plaintextChunk(path, p.Language(), content)}, nil
	}
	return chunks, nil
}

// plaintextChunk builds the whole-file fallback chunk, lossily decoding
// invalid UTF-8 with a warning rather than failing the parse.
func plaintextChunk(path, language string, content []byte) CodeChunk {
	text := string(content)
	if !utf8.ValidString(text) {
		logging.Get(logging.CategoryParser).Warn("parser: %s is not valid UTF-8, decoding lossily", path)
		text = strings.ToValidUTF8(text, "�")
	}
	lines := 1
	if len(content) > 0 {
		lines = strings.Count(text, "\n") + 1
	}
	return NewChunk(path, language, text, 1, lines, KindPlaintext)
}

func nodeErr(path string, err error) error {
	return errs.Wrap(errs.Parse, fmt.Sprintf("parse %s", path), err).WithPath(path)
}
