// Package tools provides the unified tool registry shared by the CLI and
// the MCP server. Every operation the system exposes - prompt rendering,
// workflow runs, issue and memo management, semantic search - is registered
// here exactly once and reached through both surfaces via Registry.Execute,
// so the two front ends can never drift out of sync.
//
// Architecture:
//
//	CLI command / MCP call_tool → Registry.Get() → Tool.Execute()
package tools

import (
	"context"
)

// ToolCategory classifies tools by the subsystem they front.
type ToolCategory string

const (
	// CategoryPrompt covers prompt listing, search, and rendering.
	CategoryPrompt ToolCategory = "prompt"

	// CategoryWorkflow covers workflow listing and execution.
	CategoryWorkflow ToolCategory = "workflow"

	// CategoryIssue covers issue lifecycle operations.
	CategoryIssue ToolCategory = "issue"

	// CategoryMemo covers memo CRUD and search.
	CategoryMemo ToolCategory = "memo"

	// CategorySearch covers indexing and semantic search.
	CategorySearch ToolCategory = "search"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	// Items describes array element schema (required for type="array")
	Items *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
// This enables LLM tool calling with proper validation.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines a modular tool that any agent can use.
// Tools are registered in the Registry and looked up there by name.
type Tool struct {
	// Name is the unique identifier for the tool, as passed to
	// Registry.Get and Registry.Execute.
	Name string

	// Description explains what the tool does.
	// Used for LLM tool calling and documentation.
	Description string

	// Category classifies the tool for intent filtering.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema

	// Priority is used when multiple tools match.
	// Higher priority tools are preferred (default 50).
	Priority int

	// RequiresContext indicates if the tool needs session context.
	RequiresContext bool
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// WithPriority returns a copy of the tool with the given priority.
func (t *Tool) WithPriority(priority int) *Tool {
	copy := *t
	copy.Priority = priority
	return &copy
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the string output from the tool.
	Result string

	// Error is set if the tool failed.
	Error error

	// DurationMs is how long execution took.
	DurationMs int64
}

// IsSuccess returns true if the tool executed without error.
func (r *ToolResult) IsSuccess() bool {
	return r.Error == nil
}
