package tools

import (
	"context"
	"fmt"
	"strings"

	"swissarmyhammer/internal/errs"
)

func registerWorkflowTools(r *Registry, tc *ToolContext) error {
	list := &Tool{
		Name:        "workflow/list",
		Description: "List every effective workflow definition.",
		Category:    CategoryWorkflow,
		Schema:      ToolSchema{Properties: map[string]Property{}},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			var b strings.Builder
			for _, g := range tc.Workflows.List() {
				fmt.Fprintf(&b, "%s\t%d states\n", g.Name, len(g.States))
			}
			return b.String(), nil
		},
	}

	run := &Tool{
		Name:        "workflow/run",
		Description: "Run a named workflow to completion and return its final variables.",
		Category:    CategoryWorkflow,
		Schema: ToolSchema{
			Required: []string{"name"},
			Properties: map[string]Property{
				"name": {Type: "string", Description: "workflow name"},
				"vars": {Type: "object", Description: "initial variable bindings"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			name, _ := args["name"].(string)
			vars, _ := args["vars"].(map[string]interface{})
			run, err := tc.Executor.Start(ctx, name, vars)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("run_id=%s status=%s vars=%v", run.ID, run.Status, run.Vars), nil
		},
	}

	status := &Tool{
		Name:        "workflow/status",
		Description: "Report the status of a previously started workflow run.",
		Category:    CategoryWorkflow,
		Schema: ToolSchema{
			Required:   []string{"run_id"},
			Properties: map[string]Property{"run_id": {Type: "string", Description: "run ID returned by workflow/run"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			runID, _ := args["run_id"].(string)
			if tc.Executor.Runs == nil {
				return "", errs.New(errs.NotFound, "workflow/status").WithHint("no run store configured")
			}
			run, ok := tc.Executor.Runs.Load(runID)
			if !ok {
				return "", errs.New(errs.NotFound, "workflow/status").WithID(runID)
			}
			return fmt.Sprintf("run_id=%s workflow=%s status=%s vars=%v", run.ID, run.WorkflowName, run.Status, run.Vars), nil
		},
	}

	for _, t := range []*Tool{list, run, status} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
