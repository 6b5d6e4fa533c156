package main

import (
	"os"
	"path/filepath"

	"swissarmyhammer/internal/embedding"
	"swissarmyhammer/internal/index"
	"swissarmyhammer/internal/indexer"
	"swissarmyhammer/internal/issue"
	"swissarmyhammer/internal/memo"
	"swissarmyhammer/internal/parser"
	"swissarmyhammer/internal/prompt"
	"swissarmyhammer/internal/search"
	"swissarmyhammer/internal/template"
	"swissarmyhammer/internal/tools"
	"swissarmyhammer/internal/workflow"
)

// app bundles everything built from one buildApp call so commands can reach
// both the Tool Registry (uniform dispatch) and the underlying stores when
// they need richer return values than a tool's flattened string result.
type app struct {
	registry *tools.Registry
	ctx      *tools.ToolContext
	close    func()
}

func userRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".swissarmyhammer")
}

// buildApp wires every subsystem against repoRoot and registers all tools.
// Callers should defer a.close() once the command is done.
func buildApp(repoRoot string) (*app, error) {
	promptsUser := filepath.Join(userRoot(), "prompts")
	promptsLocal := filepath.Join(repoRoot, ".swissarmyhammer", "prompts")
	promptLoader := prompt.NewLoader(promptsUser, promptsLocal)
	if err := promptLoader.LoadAll(); err != nil {
		return nil, err
	}

	templates := template.NewEngine(promptLoader.Resolve)

	workflowsUser := filepath.Join(userRoot(), "workflows")
	workflowsLocal := filepath.Join(repoRoot, ".swissarmyhammer", "workflows")
	workflowStore := workflow.NewStore(workflowsUser, workflowsLocal)
	if err := workflowStore.LoadAll(); err != nil {
		return nil, err
	}

	renderer := workflow.NewPromptRenderer(promptLoader, templates)
	runStore := workflow.NewFileRunStore(repoRoot)
	shellTimeouts := workflow.ShellTimeouts{
		Default: cfg.ShellActionTimeout(),
		Ceiling: cfg.ShellActionTimeoutCeiling(),
	}
	executor := workflow.NewExecutor(workflowStore, runStore, repoRoot, renderer, shellTimeouts)

	embedCfg := embedding.Config{
		Provider:       cfg.Embedding.Provider,
		OllamaEndpoint: cfg.Embedding.OllamaEndpoint,
		OllamaModel:    cfg.Embedding.OllamaModel,
		GenAIAPIKey:    cfg.Embedding.GenAIAPIKey,
		GenAIModel:     cfg.Embedding.GenAIModel,
		TaskType:       cfg.Embedding.TaskType,
	}
	engine, err := embedding.NewEngine(embedCfg)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Index.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(repoRoot, dbPath)
	}
	vectors, err := index.Open(dbPath, engine.Dimensions())
	if err != nil {
		return nil, err
	}

	parsers, err := parser.NewRegistry()
	if err != nil {
		vectors.Close()
		return nil, err
	}

	indexerInst := indexer.New(vectors, parsers, engine, cfg.Index.Concurrency)
	searcher := search.New(vectors, engine)

	issues := issue.NewStore(repoRoot)
	memos := memo.NewStore(repoRoot)

	toolCtx := &tools.ToolContext{
		RepoRoot:  repoRoot,
		Prompts:   promptLoader,
		Templates: templates,
		Workflows: workflowStore,
		Executor:  executor,
		Vectors:   vectors,
		Indexer:   indexerInst,
		Searcher:  searcher,
		Issues:    issues,
		Memos:     memos,
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry, toolCtx); err != nil {
		vectors.Close()
		return nil, err
	}

	return &app{
		registry: registry,
		ctx:      toolCtx,
		close:    func() { vectors.Close() },
	}, nil
}
