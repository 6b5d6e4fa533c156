package main

import (
	"context"
	"fmt"
)

// runTool builds the wired app, executes one registered tool by name, and
// prints its result. Every leaf subcommand funnels through here so the CLI
// and the MCP server never drift: both dispatch through Registry.Execute.
func runTool(name string, args map[string]any) error {
	a, err := buildApp(repo)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.registry.Execute(context.Background(), name, args)
	if err != nil {
		return err
	}
	if result.Result != "" {
		fmt.Println(result.Result)
	}
	return nil
}
