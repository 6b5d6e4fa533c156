package parser

import (
	"strings"
	"testing"
)

func TestParsePythonExtractsFunctionsAndClasses(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	src := `import os

class Greeter:
    def greet(self, name):
        return "hello " + name

def standalone():
    pass
`
	chunks, err := reg.Parse("greeter.py", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	var sawClass, sawFunc, sawImport bool
	for _, c := range chunks {
		switch c.Kind {
		case KindClass:
			sawClass = true
		case KindFunction:
			sawFunc = true
		case KindImport:
			sawImport = true
		}
		if c.FilePath != "greeter.py" {
			t.Errorf("chunk FilePath = %q, want greeter.py", c.FilePath)
		}
	}
	if !sawClass || !sawFunc || !sawImport {
		t.Errorf("expected class, function, and import chunks; got class=%v func=%v import=%v", sawClass, sawFunc, sawImport)
	}
}

func TestParseUnsupportedExtensionFallsBackToPlaintext(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	chunks, err := reg.Parse("README.md", []byte("# hello\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Kind != KindPlaintext {
		t.Fatalf("expected single plaintext chunk, got %+v", chunks)
	}
}

func TestParseNeverReturnsEmptyForNonEmptyFile(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	// Valid Rust syntactically but with no recognized top-level nodes
	// (just a comment) still must yield a chunk.
	chunks, err := reg.Parse("empty.rs", []byte("// just a comment\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected fallback plaintext chunk for file with no semantic nodes")
	}
}

func TestParseDartExtractsClassAndFunction(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	src := `import 'dart:core';

class Animal {
  void speak() {
    print('...');
  }
}

void main() {
  print('hi');
}
`
	chunks, err := reg.Parse("animal.dart", []byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var sawClass, sawFunc, sawImport bool
	for _, c := range chunks {
		switch c.Kind {
		case KindClass:
			sawClass = true
			if !strings.Contains(c.Content, "Animal") {
				t.Errorf("class chunk missing expected content: %q", c.Content)
			}
		case KindFunction:
			sawFunc = true
		case KindImport:
			sawImport = true
		}
	}
	if !sawClass || !sawFunc || !sawImport {
		t.Errorf("expected class, function, import chunks; got class=%v func=%v import=%v", sawClass, sawFunc, sawImport)
	}
}

func TestChunkIDStableForSameLocation(t *testing.T) {
	c1 := NewChunk("a.py", "python", "def f(): pass", 1, 1, KindFunction)
	c2 := NewChunk("a.py", "python", "def f(): pass", 1, 1, KindFunction)
	if c1.ID != c2.ID {
		t.Fatalf("expected stable chunk ID, got %s vs %s", c1.ID, c2.ID)
	}
}
