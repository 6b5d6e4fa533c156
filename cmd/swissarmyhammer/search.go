package main

import "github.com/spf13/cobra"

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Index files and run semantic search over them",
}

var searchIndexForce bool

var searchIndexCmd = &cobra.Command{
	Use:   "index <patterns...>",
	Short: "Index files matching the given glob patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns := make([]interface{}, len(args))
		for i, a := range args {
			patterns[i] = a
		}
		return runTool("search/index", map[string]any{"patterns": patterns, "force": searchIndexForce})
	},
}

var (
	searchQueryLimit     int
	searchQueryThreshold float64
	searchQueryLanguage  string
)

var searchQueryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Semantic search over the indexed corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool("search/query", map[string]any{
			"text":      args[0],
			"limit":     searchQueryLimit,
			"threshold": searchQueryThreshold,
			"language":  searchQueryLanguage,
		})
	},
}

func init() {
	searchIndexCmd.Flags().BoolVar(&searchIndexForce, "force", false, "reindex even unchanged files")
	searchQueryCmd.Flags().IntVar(&searchQueryLimit, "limit", 10, "maximum results")
	searchQueryCmd.Flags().Float64Var(&searchQueryThreshold, "threshold", 0, "minimum similarity score")
	searchQueryCmd.Flags().StringVar(&searchQueryLanguage, "language", "", "restrict to a language")
	searchCmd.AddCommand(searchIndexCmd, searchQueryCmd)
}
