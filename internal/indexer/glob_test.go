package indexer

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestExpandGlobsSimplePattern(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.py"))
	mkfile(t, filepath.Join(dir, "b.py"))
	mkfile(t, filepath.Join(dir, "c.txt"))

	got, err := expandGlobs([]string{filepath.Join(dir, "*.py")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expandGlobs = %v, want 2 matches", got)
	}
}

func TestExpandGlobsRecursivePattern(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "src", "a.rs"))
	mkfile(t, filepath.Join(dir, "src", "nested", "b.rs"))
	mkfile(t, filepath.Join(dir, "src", "nested", "c.txt"))

	got, err := expandGlobs([]string{filepath.Join(dir, "src", "**", "*.rs")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expandGlobs recursive = %v, want 2 .rs matches", got)
	}
}

func TestExpandGlobsDeduplicatesAcrossPatterns(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.py"))

	got, err := expandGlobs([]string{
		filepath.Join(dir, "*.py"),
		filepath.Join(dir, "a.py"),
	})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expandGlobs = %v, want exactly 1 deduplicated match", got)
	}
}

func TestExpandGlobsSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.py"))
	if err := os.Mkdir(filepath.Join(dir, "subdir.py"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := expandGlobs([]string{filepath.Join(dir, "*.py")})
	if err != nil {
		t.Fatalf("expandGlobs: %v", err)
	}
	if len(got) != 1 || filepath.Base(got[0]) != "a.py" {
		t.Fatalf("expandGlobs = %v, want only the regular file a.py", got)
	}
}

func TestMatchGlobSuffixMatchesTrailingSegments(t *testing.T) {
	ok, err := matchGlobSuffix("nested/*.rs", "src/nested/b.rs")
	if err != nil {
		t.Fatalf("matchGlobSuffix: %v", err)
	}
	if !ok {
		t.Error("matchGlobSuffix should match nested/*.rs against src/nested/b.rs")
	}

	ok, err = matchGlobSuffix("nested/*.rs", "src/other/b.rs")
	if err != nil {
		t.Fatalf("matchGlobSuffix: %v", err)
	}
	if ok {
		t.Error("matchGlobSuffix should not match a differing directory segment")
	}
}

func TestExpandRecursiveGlobOnMissingRootReturnsEmpty(t *testing.T) {
	got, err := expandRecursiveGlob(filepath.Join(t.TempDir(), "does-not-exist", "**", "*.rs"))
	if err != nil {
		t.Fatalf("expandRecursiveGlob: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expandRecursiveGlob on missing root = %v, want empty", got)
	}
}

func sortedBase(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	sort.Strings(out)
	return out
}
