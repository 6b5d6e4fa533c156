package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "List and run Mermaid-defined workflows",
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every effective workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("workflow/list", map[string]any{})
	},
}

var workflowRunVarsJSON string

var workflowRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a workflow to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs := map[string]any{"name": args[0]}
		if workflowRunVarsJSON != "" {
			var vars map[string]interface{}
			if err := json.Unmarshal([]byte(workflowRunVarsJSON), &vars); err != nil {
				return err
			}
			toolArgs["vars"] = vars
		}
		return runTool("workflow/run", toolArgs)
	},
}

var workflowStatusCmd = &cobra.Command{
	Use:   "status <run_id>",
	Short: "Report the status of a previously started run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("workflow/status", map[string]any{"run_id": args[0]})
	},
}

func init() {
	workflowRunCmd.Flags().StringVar(&workflowRunVarsJSON, "vars", "", "JSON object of initial variable bindings")
	workflowCmd.AddCommand(workflowListCmd, workflowRunCmd, workflowStatusCmd)
}
