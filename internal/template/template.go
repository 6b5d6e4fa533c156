// Package template renders prompt bodies with a Liquid-family engine:
// osteele/liquid extended with string-case/slugify/line-count filters and
// a partial-include tag that resolves to another prompt's body by name.
// No pack repo embeds a Liquid engine (see DESIGN.md), so osteele/liquid
// is adopted as the named ecosystem dependency the spec requires
// ("Liquid-family renderer"); the trust-boundary gating mechanism is
// original to this spec.
package template

import (
	"fmt"
	"sync"

	liquid "github.com/osteele/liquid"
	"github.com/osteele/liquid/render"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

// PartialResolver looks up another prompt's raw body by name, honoring
// the same layered precedence as top-level prompt lookup (§9 Open
// Question decision). ok is false if no prompt by that name exists.
type PartialResolver func(name string) (body string, trusted bool, ok bool)

// Template is a parsed, reusable prompt body. Trusted templates (builtin
// or user layer) may invoke the full filter/tag set; untrusted templates
// (local/repo layer, by default) are gated from filters that observe the
// environment.
type Template struct {
	Name         string
	Trusted      bool
	RequiredArgs []string
	Defaults     map[string]string
	compiled     *liquid.Template
}

// Engine wraps a liquid.Engine configured with this system's custom
// filters and the partial-include tag.
type Engine struct {
	liquid   *liquid.Engine
	resolver PartialResolver
}

// NewEngine builds an Engine. resolver is consulted by the {% partial %}
// tag; it may be nil if partials are not needed (e.g. in tests).
func NewEngine(resolver PartialResolver) *Engine {
	e := &Engine{liquid: liquid.NewEngine(), resolver: resolver}
	e.registerFilters()
	e.registerTags()
	return e
}

// Parse compiles source into a Template. requiredArgs/defaults come from
// the owning Prompt's ArgumentSpec list, per §4.7's MissingArgument
// contract (the liquid source itself carries no argument metadata).
func (e *Engine) Parse(name, source string, trusted bool, requiredArgs []string, defaults map[string]string) (*Template, error) {
	compiled, err := e.liquid.ParseString(source)
	if err != nil {
		return nil, errs.Wrap(errs.Parse, "template.Parse", err).WithID(name)
	}
	return &Template{
		Name:         name,
		Trusted:      trusted,
		RequiredArgs: requiredArgs,
		Defaults:     defaults,
		compiled:     compiled,
	}, nil
}

// Render renders t with args. Missing required arguments (not present in
// args and with no default) fail with a Validation error; missing
// optional arguments render as "". Partial-include cycles are tracked
// per render via a set of the partials on the current include path, held
// by pointer in the bindings so nested partial renders of the same call
// share it, per §9's traversal-local-visited-set design note.
func (e *Engine) Render(t *Template, args map[string]any) (string, error) {
	bindings := make(map[string]interface{}, len(args)+2)
	for k, v := range args {
		bindings[k] = v
	}

	for _, name := range t.RequiredArgs {
		if _, ok := args[name]; ok {
			continue
		}
		if _, ok := t.Defaults[name]; ok {
			continue
		}
		return "", errs.New(errs.Validation, "template.Render").WithID(name).
			WithHint(fmt.Sprintf("missing required argument %q", name))
	}
	for name, def := range t.Defaults {
		if _, ok := bindings[name]; !ok {
			bindings[name] = def
		}
	}

	bindings["__trusted"] = t.Trusted
	bindings["__visited_partials"] = &visitedSet{seen: map[string]bool{t.Name: true}}

	out, err := t.compiled.Render(bindings)
	if err != nil {
		return "", errs.Wrap(errs.Parse, "template.Render", err).WithID(t.Name)
	}
	return string(out), nil
}

// visitedSet is the per-render cycle detector threaded through bindings.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (v *visitedSet) visit(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[name] {
		return false
	}
	v.seen[name] = true
	return true
}

func (e *Engine) registerTags() {
	e.liquid.RegisterTag("partial", func(ctx render.Context) (string, error) {
		arg, err := ctx.ExpandTagArg()
		if err != nil {
			return "", err
		}
		name := arg
		bindings := ctx.Bindings()

		visited, _ := bindings["__visited_partials"].(*visitedSet)
		if visited != nil && !visited.visit(name) {
			return "", errs.New(errs.Cycle, "template.partial").WithID(name).
				WithHint("partial include cycle detected")
		}
		if visited != nil {
			// Leave the include path on return, so a later sibling include
			// of the same partial is not mistaken for a cycle.
			defer func() {
				visited.mu.Lock()
				delete(visited.seen, name)
				visited.mu.Unlock()
			}()
		}

		if e.resolver == nil {
			return "", errs.New(errs.NotFound, "template.partial").WithID(name)
		}
		body, trusted, ok := e.resolver(name)
		if !ok {
			return "", errs.New(errs.NotFound, "template.partial").WithID(name)
		}

		child, err := e.liquid.ParseString(body)
		if err != nil {
			return "", errs.Wrap(errs.Parse, "template.partial", err).WithID(name)
		}

		childBindings := map[string]interface{}{}
		for k, v := range bindings {
			childBindings[k] = v
		}
		// A partial is trusted only when both the including template and the
		// partial's own layer are trusted: the gated filters read __trusted
		// at render time, so an untrusted partial stays gated inside a
		// trusted caller, and any partial stays gated inside an untrusted one.
		childBindings["__trusted"] = bindings["__trusted"].(bool) && trusted

		out, err := child.Render(childBindings)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}

func init() {
	logging.TemplateDebug("template: engine package initialized")
}
