package main

import (
	"os"

	"github.com/spf13/cobra"

	"swissarmyhammer/internal/mcp"
)

const serverVersion = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP adapter over stdio, fronting the same Tool Registry as the CLI",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(repo)
		if err != nil {
			return err
		}
		defer a.close()

		server := mcp.NewServer(a.registry, "swissarmyhammer", serverVersion)
		return server.Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}
