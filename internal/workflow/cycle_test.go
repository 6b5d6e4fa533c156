package workflow

import (
	"testing"

	"swissarmyhammer/internal/errs"
)

func TestVisitedSetDetectsCycle(t *testing.T) {
	v := newVisitedSet("root")
	if err := v.enter("child"); err != nil {
		t.Fatalf("enter(child): %v", err)
	}
	if err := v.enter("root"); err == nil {
		t.Fatal("expected cycle error re-entering root")
	} else if errs.KindOf(err) != errs.Cycle {
		t.Errorf("KindOf = %v, want Cycle", errs.KindOf(err))
	}
}

func TestVisitedSetAllowsSiblingReuse(t *testing.T) {
	v := newVisitedSet("root")
	if err := v.enter("child"); err != nil {
		t.Fatalf("enter(child): %v", err)
	}
	v.leave("child")
	if err := v.enter("child"); err != nil {
		t.Fatalf("sibling re-entry of child should be legal: %v", err)
	}
}

func TestVisitedSetLeaveOnlyPopsTop(t *testing.T) {
	v := newVisitedSet("root")
	_ = v.enter("a")
	_ = v.enter("b")
	v.leave("a")
	if !v.seen["a"] {
		t.Error("leave(a) should be a no-op when a is not the top of the stack")
	}
	v.leave("b")
	if v.seen["b"] {
		t.Error("expected b removed from seen after leave(b)")
	}
}
