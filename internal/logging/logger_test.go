package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func resetState() {
	CloseAll()
	logsDir = ""
	debugMode = false
	jsonFormat = false
	logLevel = LevelInfo
}

func TestInitializeDisabledIsNoop(t *testing.T) {
	resetState()
	dir := t.TempDir()
	if err := Initialize(dir, false, "info", false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Get(CategoryIndex).Info("should not be written")
	entries, _ := os.ReadDir(filepath.Join(dir, ".swissarmyhammer", "logs"))
	if len(entries) != 0 {
		t.Fatalf("expected no log files when disabled, got %d", len(entries))
	}
}

func TestInitializeCreatesPerCategoryFiles(t *testing.T) {
	resetState()
	dir := t.TempDir()
	if err := Initialize(dir, true, "debug", false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer CloseAll()

	Get(CategoryIndex).Info("indexed 3 files")
	Get(CategorySearch).Debug("query embedded")

	entries, err := os.ReadDir(filepath.Join(dir, ".swissarmyhammer", "logs"))
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	if len(entries) < 3 { // boot + index + search
		t.Fatalf("expected at least 3 log files, got %d", len(entries))
	}
}

func TestLevelFiltering(t *testing.T) {
	resetState()
	dir := t.TempDir()
	if err := Initialize(dir, true, "warn", false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer CloseAll()

	l := Get(CategoryWorkflow)
	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")

	path := filepath.Join(dir, ".swissarmyhammer", "logs")
	entries, _ := os.ReadDir(path)
	found := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" && contains(e.Name(), "workflow") {
			found = true
			data, err := os.ReadFile(filepath.Join(path, e.Name()))
			if err != nil {
				t.Fatalf("read workflow log: %v", err)
			}
			if contains(string(data), "dropped") || !contains(string(data), "kept") {
				t.Errorf("workflow log = %q, want only the warn line", data)
			}
		}
	}
	if !found {
		t.Fatalf("expected a workflow log file, entries=%v", entries)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
