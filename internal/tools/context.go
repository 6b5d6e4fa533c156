package tools

import (
	"swissarmyhammer/internal/index"
	"swissarmyhammer/internal/indexer"
	"swissarmyhammer/internal/issue"
	"swissarmyhammer/internal/memo"
	"swissarmyhammer/internal/prompt"
	"swissarmyhammer/internal/search"
	"swissarmyhammer/internal/template"
	"swissarmyhammer/internal/workflow"
)

// ToolContext carries every subsystem handle a registered Tool may need
// (§4.13). It is built once at startup and closed over by each Execute
// function at registration time.
type ToolContext struct {
	RepoRoot string

	Prompts   *prompt.Loader
	Templates *template.Engine
	Workflows *workflow.Store
	Executor  *workflow.Executor
	Vectors   *index.Store
	Indexer   *indexer.Indexer
	Searcher  *search.Searcher
	Issues    *issue.Store
	Memos     *memo.Store
}

// RegisterAll registers every tool group's tools into registry against ctx.
func RegisterAll(registry *Registry, ctx *ToolContext) error {
	registrars := []func(*Registry, *ToolContext) error{
		registerPromptTools,
		registerWorkflowTools,
		registerIssueTools,
		registerMemoTools,
		registerSearchTools,
	}
	for _, register := range registrars {
		if err := register(registry, ctx); err != nil {
			return err
		}
	}
	return nil
}
