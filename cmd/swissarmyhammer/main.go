// Package main implements the swissarmyhammer CLI: a cobra front end over
// the same Tool Registry the MCP adapter serves, so every operation is
// available both as a subcommand and as an MCP tool call.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swissarmyhammer/internal/config"
	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
)

var (
	verbose   bool
	workspace string

	logger *zap.Logger
	cfg    *config.Config
	repo   string
)

var rootCmd = &cobra.Command{
	Use:   "swissarmyhammer",
	Short: "swissarmyhammer - prompt, workflow, issue, memo, and semantic search tooling",
	Long: `swissarmyhammer manages a repository's prompt library, Mermaid-defined
workflows, numbered issues, memos, and a semantic code index, all through
one Tool Registry shared with the MCP stdio server ("serve").`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			var err error
			ws, err = os.Getwd()
			if err != nil {
				return err
			}
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		repo = ws

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		loaded, err := config.Load(repo)
		if err != nil {
			return err
		}
		cfg = loaded
		if err := cfg.InitLogging(repo); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "repository root (default: current directory)")

	rootCmd.AddCommand(promptCmd, workflowCmd, issueCmd, memoCmd, searchCmd, serveCmd, completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(errs.ExitCode(err))
	}
}
