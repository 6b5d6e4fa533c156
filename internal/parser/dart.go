package parser

import (
	"regexp"
	"strings"
)

// dartParser is a lightweight structural scanner for Dart source, used in
// place of a tree-sitter grammar (this pack's go-tree-sitter distribution
// does not bundle one — see SPEC_FULL.md's Feature Supplementation
// section). It recognizes top-level class/function signatures by regex
// rather than building an AST; anything it misses still surfaces through
// the registry's plaintext fallback rather than being silently dropped.
type dartParser struct{}

func newDartParser() LanguageParser { return dartParser{} }

func (dartParser) Language() string              { return "dart" }
func (dartParser) SupportedExtensions() []string { return []string{".dart"} }

var (
	dartClassRe  = regexp.MustCompile(`(?m)^\s*(?:abstract\s+)?class\s+(\w+)`)
	dartImportRe = regexp.MustCompile(`(?m)^\s*import\s+['"][^'"]+['"]`)
	// Matches a top-level function/method signature: optional return type,
	// identifier, parameter list, opening brace on the same or a later line.
	dartFuncRe = regexp.MustCompile(`(?m)^\s*(?:[\w<>,\s\[\]?]+\s+)?(\w+)\s*\([^;{]*\)\s*(?:async\s*)?\{`)
)

func (dartParser) Parse(path string, content []byte) ([]CodeChunk, error) {
	text := string(content)
	lines := strings.Split(text, "\n")

	var chunks []CodeChunk

	for _, m := range dartImportRe.FindAllStringIndex(text, -1) {
		start, end := lineSpan(lines, m[0], m[1])
		chunks = append(chunks, NewChunk(path, "dart", text[m[0]:m[1]], start, end, KindImport))
	}

	classSpans := spansUntilNextTopLevel(text, dartClassRe)
	for _, s := range classSpans {
		start, end := lineSpan(lines, s[0], s[1])
		chunks = append(chunks, NewChunk(path, "dart", text[s[0]:s[1]], start, end, KindClass))
	}

	for _, m := range dartFuncRe.FindAllStringIndex(text, -1) {
		// Skip matches already inside a class span to avoid double-counting
		// every method as both part of the class chunk and its own chunk;
		// top-level functions still get their own chunk.
		inClass := false
		for _, s := range classSpans {
			if m[0] >= s[0] && m[0] < s[1] {
				inClass = true
				break
			}
		}
		if inClass {
			continue
		}
		end := matchBraceEnd(text, m[1]-1)
		start, endLine := lineSpan(lines, m[0], end)
		chunks = append(chunks, NewChunk(path, "dart", text[m[0]:end], start, endLine, KindFunction))
	}

	return chunks, nil
}

// spansUntilNextTopLevel finds each regex match's start and extends it to
// the matching closing brace of its body, approximating a class body span.
func spansUntilNextTopLevel(text string, re *regexp.Regexp) [][2]int {
	var spans [][2]int
	for _, m := range re.FindAllStringIndex(text, -1) {
		openIdx := strings.IndexByte(text[m[1]:], '{')
		if openIdx < 0 {
			spans = append(spans, [2]int{m[0], m[1]})
			continue
		}
		end := matchBraceEnd(text, m[1]+openIdx)
		spans = append(spans, [2]int{m[0], end})
	}
	return spans
}

// matchBraceEnd returns the index just past the closing brace matching the
// opening brace at openIdx (which must point at '{').
func matchBraceEnd(text string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

func lineSpan(lines []string, startByte, endByte int) (startLine, endLine int) {
	offset := 0
	startLine, endLine = 1, 1
	for i, l := range lines {
		lineLen := len(l) + 1 // account for stripped newline
		if offset <= startByte && startByte < offset+lineLen {
			startLine = i + 1
		}
		if offset < endByte && endByte <= offset+lineLen {
			endLine = i + 1
		}
		offset += lineLen
	}
	if endLine < startLine {
		endLine = startLine
	}
	return startLine, endLine
}
