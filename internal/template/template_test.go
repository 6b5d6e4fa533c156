package template

import (
	"strings"
	"testing"

	"swissarmyhammer/internal/errs"
)

func TestRenderIsDeterministic(t *testing.T) {
	e := NewEngine(nil)
	tpl, err := e.Parse("greet", "Hello, {{ name }}!", true, []string{"name"}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	args := map[string]any{"name": "Ada"}
	first, err := e.Render(tpl, args)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := e.Render(tpl, args)
	if err != nil {
		t.Fatalf("Render (second call): %v", err)
	}
	if first != second {
		t.Fatalf("Render not deterministic: %q != %q", first, second)
	}
	if first != "Hello, Ada!" {
		t.Errorf("Render = %q, want %q", first, "Hello, Ada!")
	}
}

func TestRenderMissingRequiredArgumentFails(t *testing.T) {
	e := NewEngine(nil)
	tpl, err := e.Parse("greet", "Hello, {{ name }}!", true, []string{"name"}, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = e.Render(tpl, map[string]any{})
	if err == nil {
		t.Fatal("expected error for missing required argument")
	}
	if errs.KindOf(err) != errs.Validation {
		t.Errorf("KindOf(err) = %v, want Validation", errs.KindOf(err))
	}
}

func TestRenderAppliesDefaultForMissingOptionalArgument(t *testing.T) {
	e := NewEngine(nil)
	tpl, err := e.Parse("greet", "Hello, {{ name }}!", true, nil, map[string]string{"name": "World"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out, err := e.Render(tpl, map[string]any{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Hello, World!" {
		t.Errorf("Render = %q, want %q", out, "Hello, World!")
	}
}

func TestRenderResolvesPartial(t *testing.T) {
	resolver := func(name string) (string, bool, bool) {
		if name == "footer" {
			return "-- bye", true, true
		}
		return "", false, false
	}
	e := NewEngine(resolver)
	tpl, err := e.Parse("main", "hi{% partial 'footer' %}", true, nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out, err := e.Render(tpl, map[string]any{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "bye") {
		t.Errorf("Render = %q, want it to contain the partial's body", out)
	}
}

func TestRenderDetectsPartialCycle(t *testing.T) {
	resolver := func(name string) (string, bool, bool) {
		return "{% partial 'main' %}", true, true
	}
	e := NewEngine(resolver)
	tpl, err := e.Parse("main", "{% partial 'main' %}", true, nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = e.Render(tpl, map[string]any{})
	if err == nil {
		t.Fatal("expected cycle error")
	}
	if errs.KindOf(err) != errs.Cycle {
		t.Errorf("KindOf(err) = %v, want Cycle", errs.KindOf(err))
	}
}

func TestRenderUnknownPartialIsNotFound(t *testing.T) {
	e := NewEngine(func(name string) (string, bool, bool) { return "", false, false })
	tpl, err := e.Parse("main", "{% partial 'missing' %}", true, nil, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = e.Render(tpl, map[string]any{})
	if errs.KindOf(err) != errs.NotFound {
		t.Errorf("KindOf(err) = %v, want NotFound", errs.KindOf(err))
	}
}

func TestEnvFilterGatedByTrust(t *testing.T) {
	e := NewEngine(nil)

	trusted, err := e.Parse("trusted", "{{ 'PATH' | env }}", true, nil, nil)
	if err != nil {
		t.Fatalf("Parse(trusted): %v", err)
	}
	if _, err := e.Render(trusted, map[string]any{}); err != nil {
		t.Errorf("trusted Render with env filter failed: %v", err)
	}

	untrusted, err := e.Parse("untrusted", "{{ 'PATH' | env }}", false, nil, nil)
	if err != nil {
		t.Fatalf("Parse(untrusted): %v", err)
	}
	_, err = e.Render(untrusted, map[string]any{})
	if err == nil {
		t.Fatal("expected untrusted template to be denied the env filter")
	}
	if errs.KindOf(err) != errs.Untrusted {
		t.Errorf("KindOf(err) = %v, want Untrusted", errs.KindOf(err))
	}
}
