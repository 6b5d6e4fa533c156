package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "List, search, and render prompts",
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every effective prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("prompt/list", map[string]any{})
	},
}

var promptSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search prompts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("prompt/search", map[string]any{"query": args[0]})
	},
}

var promptRenderArgsJSON string

var promptRenderCmd = &cobra.Command{
	Use:   "render <name>",
	Short: "Render a prompt against the given arguments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		toolArgs := map[string]any{"name": args[0]}
		if promptRenderArgsJSON != "" {
			var bindings map[string]interface{}
			if err := json.Unmarshal([]byte(promptRenderArgsJSON), &bindings); err != nil {
				return err
			}
			toolArgs["args"] = bindings
		}
		return runTool("prompt/render", toolArgs)
	},
}

func init() {
	promptRenderCmd.Flags().StringVar(&promptRenderArgsJSON, "args", "", "JSON object of argument bindings")
	promptCmd.AddCommand(promptListCmd, promptSearchCmd, promptRenderCmd)
}
