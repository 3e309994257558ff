// Package tools holds helpers shared by every tool subpackage
// (registrytools, schematools, contexttools, ...): translating a
// srerr.Error into the structured {error, details?, code?} object every
// tool surface promises, and rendering parameter-validation failures in
// that same shape.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/srcp/schema-registry-controlplane/internal/mcp"
	"github.com/srcp/schema-registry-controlplane/internal/srerr"
)

// ErrorResult renders err as a structured, in-band tool error, never as a
// JSON-RPC protocol failure.
func ErrorResult(err error) (*mcp.ToolsCallResult, error) {
	body := map[string]any{"error": err.Error()}
	if se, ok := srerr.Of(err); ok {
		body["code"] = string(se.Kind)
		if se.Details != nil {
			body["details"] = se.Details
		}
	}
	b, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return &mcp.ToolsCallResult{
		Content: []mcp.ContentBlock{mcp.TextContent(string(b))},
		IsError: true,
	}, nil
}

// InvalidParams renders a JSON-unmarshal or validation failure the same
// shape ErrorResult uses, for consistency across every tool's early-exit
// path.
func InvalidParams(err error) (*mcp.ToolsCallResult, error) {
	return ErrorResult(fmt.Errorf("invalid parameters: %w", err))
}
