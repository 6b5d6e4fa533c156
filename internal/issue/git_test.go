package issue

import (
	"context"
	"os/exec"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")
	run("commit", "--allow-empty", "-m", "initial")
}

func TestStoreWorkAndMerge(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	s := NewStore(dir)
	iss, err := s.Create("Add widget", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx := context.Background()
	if err := s.Work(ctx, dir, iss.Number); err != nil {
		t.Fatalf("Work: %v", err)
	}

	current, ok, err := s.Current(ctx, dir)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !ok || current.Number != iss.Number {
		t.Fatalf("Current = (%v, %v), want issue #%d", current, ok, iss.Number)
	}

	cmd := exec.Command("git", "add", "-A")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	cmd = exec.Command("git", "commit", "-m", "work on issue")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}

	if err := s.Merge(ctx, dir, iss.Number); err != nil {
		t.Fatalf("Merge: %v", err)
	}
}

func TestStoreWorkReentersExistingBranch(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	s := NewStore(dir)
	iss, err := s.Create("Reenter", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ctx := context.Background()
	if err := s.Work(ctx, dir, iss.Number); err != nil {
		t.Fatalf("Work (first): %v", err)
	}

	cmd := exec.Command("git", "checkout", "main")
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git checkout main: %v\n%s", err, out)
	}

	if err := s.Work(ctx, dir, iss.Number); err != nil {
		t.Fatalf("Work (second, should re-checkout existing branch): %v", err)
	}
}

func TestStoreCurrentNoMatchingBranch(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	initRepo(t, dir)

	s := NewStore(dir)
	_, ok, err := s.Current(context.Background(), dir)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if ok {
		t.Fatal("expected no current issue on main branch")
	}
}
