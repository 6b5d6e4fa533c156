package issue

import (
	"testing"

	"swissarmyhammer/internal/errs"
)

func TestStoreCreateAndGet(t *testing.T) {
	s := NewStore(t.TempDir())

	iss, err := s.Create("Fix the bug", "Steps to reproduce.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if iss.Number != 1 {
		t.Errorf("Number = %d, want 1", iss.Number)
	}
	if iss.Slug != "fix-the-bug" {
		t.Errorf("Slug = %q, want fix-the-bug", iss.Slug)
	}

	got, err := s.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Fix the bug" {
		t.Errorf("Title = %q", got.Title)
	}
}

func TestStoreCreateMonotoneNumbering(t *testing.T) {
	s := NewStore(t.TempDir())
	first, err := s.Create("First", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create("Second", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if second.Number != first.Number+1 {
		t.Errorf("second.Number = %d, want %d", second.Number, first.Number+1)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Get(99)
	if err == nil {
		t.Fatal("expected NotFound error")
	}
	if errs.KindOf(err) != errs.NotFound {
		t.Errorf("KindOf = %v, want NotFound", errs.KindOf(err))
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore(t.TempDir())
	iss, err := s.Create("Title", "original body")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Update(iss.Number, "# Title\n\nrevised body"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Get(iss.Number)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Body != "# Title\n\nrevised body" {
		t.Errorf("Body = %q", got.Body)
	}
}

func TestStoreUpdateNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Update(1, "body"); err == nil {
		t.Fatal("expected NotFound error")
	}
}

func TestStoreListSortedByNumber(t *testing.T) {
	s := NewStore(t.TempDir())
	for _, title := range []string{"A", "B", "C"} {
		if _, err := s.Create(title, ""); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	for i, iss := range list {
		if iss.Number != i+1 {
			t.Errorf("list[%d].Number = %d, want %d", i, iss.Number, i+1)
		}
	}
}

func TestStoreListEmptyWhenNoDir(t *testing.T) {
	s := NewStore(t.TempDir())
	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}

func TestStoreCompleteAndAllComplete(t *testing.T) {
	s := NewStore(t.TempDir())
	iss, err := s.Create("Only issue", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := s.AllComplete()
	if err != nil {
		t.Fatalf("AllComplete: %v", err)
	}
	if done {
		t.Error("AllComplete = true before completing the only issue")
	}

	if err := s.Complete(iss.Number); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got, err := s.Get(iss.Number)
	if err != nil {
		t.Fatalf("Get after Complete: %v", err)
	}
	if !got.Completed {
		t.Error("expected Completed = true after Complete")
	}

	done, err = s.AllComplete()
	if err != nil {
		t.Fatalf("AllComplete: %v", err)
	}
	if !done {
		t.Error("AllComplete = false after completing the only issue")
	}
}

func TestStoreCompleteNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Complete(5); err == nil {
		t.Fatal("expected NotFound error")
	}
}

func TestStoreNext(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, ok, err := s.Next(); err != nil || ok {
		t.Fatalf("Next on empty store = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	first, err := s.Create("First", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create("Second", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	next, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next = (_, %v, %v)", ok, err)
	}
	if next.Number != first.Number {
		t.Errorf("Next.Number = %d, want %d", next.Number, first.Number)
	}

	if err := s.Complete(first.Number); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	next, ok, err = s.Next()
	if err != nil || !ok {
		t.Fatalf("Next after completing first = (_, %v, %v)", ok, err)
	}
	if next.Number != first.Number+1 {
		t.Errorf("Next.Number = %d, want %d", next.Number, first.Number+1)
	}
}
