package prompt

import (
	"os"
	"path/filepath"
	"testing"
)

func writePromptFile(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		t.Fatalf("writePromptFile(%s): %v", filename, err)
	}
}

func TestLoaderLocalTakesPrecedenceOverUser(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()

	writePromptFile(t, userDir, "greet.md", "---\nname: greet\ndescription: user layer\n---\nfrom user\n")
	writePromptFile(t, localDir, "greet.md", "---\nname: greet\ndescription: local layer\n---\nfrom local\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	p, ok := l.Get("greet")
	if !ok {
		t.Fatal("Get(greet) not found")
	}
	if p.Layer != Local {
		t.Errorf("resolved layer = %v, want Local", p.Layer)
	}
	if p.Description != "local layer" {
		t.Errorf("Description = %q, want %q", p.Description, "local layer")
	}
}

func TestLoaderUserTakesPrecedenceOverBuiltinWhenNamesCollideWithoutLocal(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()

	// "plan" is also a builtin prompt (internal/prompt/builtin/prompts/plan.md).
	writePromptFile(t, userDir, "plan.md", "---\nname: plan\ndescription: user's own plan\n---\nbody\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	p, ok := l.Get("plan")
	if !ok {
		t.Fatal("Get(plan) not found")
	}
	if p.Layer != User {
		t.Errorf("resolved layer = %v, want User", p.Layer)
	}
}

func TestLoaderNameDerivedFromFileStemWhenFrontMatterOmitsIt(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()
	writePromptFile(t, userDir, "no-name.md", "Just a body, no front matter at all.\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	p, ok := l.Get("no-name")
	if !ok {
		t.Fatal("Get(no-name) not found")
	}
	if p.Body == "" {
		t.Error("Body should not be empty")
	}
}

func TestLoaderReloadRefreshesOnlyOneLayer(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()
	writePromptFile(t, userDir, "a.md", "---\nname: a\ndescription: v1\n---\nbody\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	writePromptFile(t, userDir, "a.md", "---\nname: a\ndescription: v2\n---\nbody\n")
	if err := l.Reload(User); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	p, ok := l.Get("a")
	if !ok || p.Description != "v2" {
		t.Fatalf("Get(a) after reload = %+v, ok=%v, want description v2", p, ok)
	}
}

func TestLoaderListIsSortedAndDeduplicated(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()
	writePromptFile(t, userDir, "zebra.md", "---\nname: zebra\n---\nz\n")
	writePromptFile(t, userDir, "apple.md", "---\nname: apple\n---\na\n")
	writePromptFile(t, localDir, "apple.md", "---\nname: apple\n---\na-local\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	// The two builtin prompts (code-review, plan) are listed as well.
	list := l.List()
	want := []string{"apple", "code-review", "plan", "zebra"}
	if len(list) != len(want) {
		t.Fatalf("List() returned %d prompts, want %d (deduplicated)", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Fatalf("List()[%d] = %s, want %s (order %v)", i, list[i].Name, name, want)
		}
	}
}

func TestLoaderSearchMatchesNameDescriptionAndBody(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()
	writePromptFile(t, userDir, "refactor.md", "---\nname: refactor\ndescription: clean up code\n---\nmentions widgets\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	if results := l.Search("widgets"); len(results) != 1 {
		t.Errorf("Search(widgets) = %d results, want 1", len(results))
	}
	if results := l.Search("CLEAN"); len(results) != 1 {
		t.Errorf("Search(CLEAN) = %d results, want 1 (case-insensitive)", len(results))
	}
	if results := l.Search("nonexistent"); len(results) != 0 {
		t.Errorf("Search(nonexistent) = %d results, want 0", len(results))
	}
}

func TestLoaderResolveReportsTrustByLayer(t *testing.T) {
	userDir := t.TempDir()
	localDir := t.TempDir()
	writePromptFile(t, userDir, "trusted.md", "---\nname: trusted\n---\nuser body\n")
	writePromptFile(t, localDir, "untrusted.md", "---\nname: untrusted\n---\nlocal body\n")

	l := NewLoader(userDir, localDir)
	if err := l.LoadAll(); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}

	body, trusted, ok := l.Resolve("trusted")
	if !ok || body != "user body\n" || !trusted {
		t.Errorf("Resolve(trusted) = (%q, %v, %v), want user body trusted", body, trusted, ok)
	}

	body, trusted, ok = l.Resolve("untrusted")
	if !ok || body != "local body\n" || trusted {
		t.Errorf("Resolve(untrusted) = (%q, %v, %v), want local body untrusted", body, trusted, ok)
	}

	if _, _, ok := l.Resolve("missing"); ok {
		t.Error("Resolve(missing) = ok, want not found")
	}
}

func TestBuildPromptRejectsRequiredArgumentWithDefault(t *testing.T) {
	content := "---\nname: bad\narguments:\n  - name: x\n    required: true\n    default: \"1\"\n---\nbody\n"
	if _, err := buildPrompt("bad.md", "bad.md", content, User); err == nil {
		t.Fatal("expected error for required argument with a default")
	}
}
