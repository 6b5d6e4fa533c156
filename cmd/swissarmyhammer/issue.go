package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Manage numbered issues and their git branches",
}

var issueCreateBody string

var issueCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("issue/create", map[string]any{"title": args[0], "body": issueCreateBody})
	},
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update <number> <body>",
	Short: "Overwrite a pending issue's body",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return runTool("issue/update", map[string]any{"number": n, "body": args[1]})
	},
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every pending issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("issue/list", map[string]any{})
	},
}

var issueWorkCmd = &cobra.Command{
	Use:   "work <number>",
	Short: "Check out the issue's dedicated branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return runTool("issue/work", map[string]any{"number": n})
	},
}

var issueMergeCmd = &cobra.Command{
	Use:   "merge <number>",
	Short: "Merge the issue's branch back into the base branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return runTool("issue/merge", map[string]any{"number": n})
	},
}

var issueCompleteCmd = &cobra.Command{
	Use:   "complete <number>",
	Short: "Mark an issue complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return runTool("issue/complete", map[string]any{"number": n})
	},
}

var issueCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Report the issue matching the current git branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("issue/current", map[string]any{})
	},
}

var issueNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Report the lowest-numbered pending issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("issue/next", map[string]any{})
	},
}

var issueAllCompleteCmd = &cobra.Command{
	Use:   "all-complete",
	Short: "Report whether every issue is complete",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("issue/all_complete", map[string]any{})
	},
}

func init() {
	issueCreateCmd.Flags().StringVar(&issueCreateBody, "body", "", "issue body")
	issueCmd.AddCommand(
		issueCreateCmd, issueUpdateCmd, issueListCmd, issueWorkCmd,
		issueMergeCmd, issueCompleteCmd, issueCurrentCmd, issueNextCmd, issueAllCompleteCmd,
	)
}
