package prompt

import "testing"

func TestParseFileExtractsFrontMatterAndBody(t *testing.T) {
	content := "---\nname: greet\ndescription: says hello\narguments:\n  - name: who\n    required: true\n---\nHello, {{ who }}!\n"
	fm, body, err := parseFile(content)
	if err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if fm.Name != "greet" {
		t.Errorf("fm.Name = %q, want greet", fm.Name)
	}
	if fm.Description != "says hello" {
		t.Errorf("fm.Description = %q, want %q", fm.Description, "says hello")
	}
	if len(fm.Arguments) != 1 || fm.Arguments[0].Name != "who" || !fm.Arguments[0].Required {
		t.Errorf("fm.Arguments = %+v, want one required argument named who", fm.Arguments)
	}
	if body != "Hello, {{ who }}!\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseFileWithoutFenceTreatsWholeContentAsBody(t *testing.T) {
	content := "Just a plain prompt body with no front matter.\n"
	fm, body, err := parseFile(content)
	if err != nil {
		t.Fatalf("parseFile: %v", err)
	}
	if fm.Name != "" {
		t.Errorf("fm.Name = %q, want empty", fm.Name)
	}
	if body != content {
		t.Errorf("body = %q, want %q", body, content)
	}
}

func TestParseFileUnterminatedFrontMatterFails(t *testing.T) {
	content := "---\nname: broken\nno closing fence here\n"
	_, _, err := parseFile(content)
	if err == nil {
		t.Fatal("expected error for unterminated front matter")
	}
}

func TestParseFileInvalidYAMLFails(t *testing.T) {
	content := "---\nname: [unclosed\n---\nbody\n"
	_, _, err := parseFile(content)
	if err == nil {
		t.Fatal("expected error for invalid YAML front matter")
	}
}
