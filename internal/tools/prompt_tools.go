package tools

import (
	"context"
	"fmt"
	"strings"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/prompt"
)

func registerPromptTools(r *Registry, tc *ToolContext) error {
	list := &Tool{
		Name:        "prompt/list",
		Description: "List every effective prompt across the builtin, user, and local layers.",
		Category:    CategoryPrompt,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var b strings.Builder
			for _, p := range tc.Prompts.List() {
				fmt.Fprintf(&b, "%s\t%s\t%s\n", p.Name, p.Layer, p.Description)
			}
			return b.String(), nil
		},
	}

	search := &Tool{
		Name:        "prompt/search",
		Description: "Full-text search prompt name, description, and body.",
		Category:    CategoryPrompt,
		Schema: ToolSchema{
			Required:   []string{"query"},
			Properties: map[string]Property{"query": {Type: "string", Description: "search text"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			var b strings.Builder
			for _, p := range tc.Prompts.Search(query) {
				fmt.Fprintf(&b, "%s\t%s\n", p.Name, p.Description)
			}
			return b.String(), nil
		},
	}

	render := &Tool{
		Name:        "prompt/render",
		Description: "Render a named prompt against the given arguments.",
		Category:    CategoryPrompt,
		Schema: ToolSchema{
			Required: []string{"name"},
			Properties: map[string]Property{
				"name": {Type: "string", Description: "prompt name"},
				"args": {Type: "object", Description: "argument bindings"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return renderPrompt(tc, args)
		},
	}

	for _, t := range []*Tool{list, search, render} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func renderPrompt(tc *ToolContext, args map[string]any) (string, error) {
	name, _ := args["name"].(string)
	p, ok := tc.Prompts.Get(name)
	if !ok {
		return "", errs.New(errs.NotFound, "prompt/render").WithID(name)
	}

	bindings := map[string]interface{}{}
	if raw, ok := args["args"].(map[string]interface{}); ok {
		for k, v := range raw {
			bindings[k] = v
		}
	}
	for _, k := range p.RequiredArgNames() {
		if _, ok := args[k]; ok {
			bindings[k] = args[k]
		}
	}

	trusted := p.Layer != prompt.Local
	tmpl, err := tc.Templates.Parse(p.Name, p.Body, trusted, p.RequiredArgNames(), p.Defaults())
	if err != nil {
		return "", err
	}
	return tc.Templates.Render(tmpl, bindings)
}
