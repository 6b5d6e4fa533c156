package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"swissarmyhammer/internal/errs"
	"swissarmyhammer/internal/logging"
	"swissarmyhammer/internal/tools"
)

// Server reads JSON-RPC 2.0 requests from an input stream and answers
// from a Tool Registry, writing one JSON response per line to an output
// stream. It adds no business logic of its own (§4.16: "the thinnest
// possible wrapper").
type Server struct {
	registry *tools.Registry
	name     string
	version  string
}

// NewServer builds a Server fronting registry.
func NewServer(registry *tools.Registry, name, version string) *Server {
	return &Server{registry: registry, name: name, version: version}
}

// Serve runs the read-dispatch-write loop until in is exhausted or ctx
// is cancelled. Each line of in must be one JSON-RPC request object.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.handleLine(ctx, line)
		if resp == nil {
			continue // notification, no response expected
		}
		data, err := json.Marshal(resp)
		if err != nil {
			logging.Get(logging.CategoryMCP).Error("mcp: failed to marshal response: %v", err)
			continue
		}
		if _, err := writer.Write(append(data, '\n')); err != nil {
			return errs.Wrap(errs.IO, "mcp.Serve", err)
		}
		if err := writer.Flush(); err != nil {
			return errs.Wrap(errs.IO, "mcp.Serve", err)
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) *response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return &response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "invalid JSON: " + err.Error()}}
	}

	// A request with no ID is a notification; the caller expects no reply.
	isNotification := len(req.ID) == 0

	var result interface{}
	var rpcErr *rpcError

	switch req.Method {
	case "initialize":
		result = s.handleInitialize()
	case "notifications/initialized":
		return nil
	case "list_tools", "tools/list":
		result = s.handleListTools()
	case "call_tool", "tools/call":
		result, rpcErr = s.handleCallTool(ctx, req.Params)
	default:
		rpcErr = &rpcError{Code: codeMethodNotFound, Message: "unknown method: " + req.Method}
	}

	if isNotification {
		return nil
	}
	return &response{JSONRPC: "2.0", ID: req.ID, Result: result, Error: rpcErr}
}

func (s *Server) handleInitialize() initializeResult {
	return initializeResult{
		ProtocolVersion: "2024-11-05",
		Capabilities:    capabilities{Tools: map[string]interface{}{}},
		ServerInfo:      serverInfo{Name: s.name, Version: s.version},
	}
}

func (s *Server) handleListTools() listToolsResult {
	var out listToolsResult
	for _, t := range s.registry.All() {
		schemaJSON, err := json.Marshal(t.Schema)
		if err != nil {
			continue
		}
		out.Tools = append(out.Tools, toolSchema{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaJSON,
		})
	}
	return out
}

// handleCallTool checks that every argument the tool's schema marks as
// required is present before dispatch (§6's wire protocol contract),
// returning a pointer to the first missing field. Argument types are not
// checked against the schema.
func (s *Server) handleCallTool(ctx context.Context, raw json.RawMessage) (callToolResult, *rpcError) {
	var params callToolParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return callToolResult{}, &rpcError{Code: codeInvalidParams, Message: "invalid call_tool params: " + err.Error()}
	}

	tool := s.registry.Get(params.Name)
	if tool == nil {
		return callToolResult{}, &rpcError{Code: codeInvalidParams, Message: "unknown tool: " + params.Name}
	}

	if missing := firstMissingRequired(tool, params.Arguments); missing != "" {
		return callToolResult{}, &rpcError{
			Code:    codeInvalidParams,
			Message: fmt.Sprintf("missing required argument %q", missing),
			Data:    map[string]string{"pointer": "/arguments/" + missing},
		}
	}

	result, err := s.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		return callToolResult{
			Content: []contentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	return callToolResult{Content: []contentBlock{{Type: "text", Text: result.Result}}}, nil
}

func firstMissingRequired(t *tools.Tool, args map[string]interface{}) string {
	for _, name := range t.Schema.Required {
		if _, ok := args[name]; !ok {
			return name
		}
	}
	return ""
}
