package main

import "github.com/spf13/cobra"

var memoCmd = &cobra.Command{
	Use:   "memo",
	Short: "Manage title-named memo files",
}

var memoCreateBody string

var memoCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new memo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/create", map[string]any{"title": args[0], "body": memoCreateBody})
	},
}

var memoGetCmd = &cobra.Command{
	Use:   "get <title>",
	Short: "Fetch one memo's body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/get", map[string]any{"title": args[0]})
	},
}

var memoUpdateCmd = &cobra.Command{
	Use:   "update <title> <body>",
	Short: "Overwrite a memo's body",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/update", map[string]any{"title": args[0], "body": args[1]})
	},
}

var memoDeleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a memo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/delete", map[string]any{"title": args[0]})
	},
}

var memoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every memo title",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/list", map[string]any{})
	},
}

var memoSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Case-insensitive substring search over memos",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/search", map[string]any{"query": args[0]})
	},
}

var memoContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Concatenate every memo's body for use as context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("memo/get_all_context", map[string]any{})
	},
}

func init() {
	memoCreateCmd.Flags().StringVar(&memoCreateBody, "body", "", "memo body")
	memoCmd.AddCommand(memoCreateCmd, memoGetCmd, memoUpdateCmd, memoDeleteCmd, memoListCmd, memoSearchCmd, memoContextCmd)
}
