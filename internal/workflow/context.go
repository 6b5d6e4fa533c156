package workflow

import (
	"time"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/prompt"
	"swissarmyhammer/internal/template"
)

// PromptRenderer is the subset of the Template Engine + Prompt Loader that
// PromptAction needs to render a named prompt against arguments.
type PromptRenderer interface {
	RenderPrompt(name string, args map[string]interface{}) (string, error)
}

// promptRenderer is the concrete PromptRenderer built from a real Loader
// and Engine pair.
type promptRenderer struct {
	loader *prompt.Loader
	engine *template.Engine
}

// NewPromptRenderer builds the default PromptRenderer wiring the Prompt
// Loader to the Template Engine.
func NewPromptRenderer(loader *prompt.Loader, engine *template.Engine) PromptRenderer {
	return &promptRenderer{loader: loader, engine: engine}
}

func (r *promptRenderer) RenderPrompt(name string, args map[string]interface{}) (string, error) {
	p, ok := r.loader.Get(name)
	if !ok {
		return "", errs.New(errs.NotFound, "workflow.RenderPrompt").WithID(name)
	}
	bindings := make(map[string]interface{}, len(args)+len(p.Defaults()))
	for k, v := range p.Defaults() {
		bindings[k] = v
	}
	for k, v := range args {
		bindings[k] = v
	}
	trusted := p.Layer != prompt.Local
	tmpl, err := r.engine.Parse(name, p.Body, trusted, p.RequiredArgNames(), p.Defaults())
	if err != nil {
		return "", err
	}
	return r.engine.Render(tmpl, bindings)
}

// ShellTimeouts carries the configured default and ceiling for ShellAction.
type ShellTimeouts struct {
	Default time.Duration
	Ceiling time.Duration
}

// RunContext is threaded through a single branch's action execution. It
// owns that branch's variables and carries the handles actions need.
type RunContext struct {
	Vars     RunVars
	WorkDir  string
	Prompts  PromptRenderer
	Runner   SubWorkflowRunner
	Shell    ShellTimeouts
	RunID    string
	Depth    int
	Visited  *visitedSet
}

// SubWorkflowRunner is the subset of the Executor that SubWorkflowAction
// needs to invoke a named child workflow.
type SubWorkflowRunner interface {
	RunChild(parentRunID string, visited *visitedSet, name string, vars RunVars) (RunVars, error)
}
