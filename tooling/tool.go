package tooling

import (
	"context"
	"fmt"
	"time"
)

// Spec is the static metadata describing a tool: its wire name, the JSON
// Schema of its input, and the resource limits enforced at the registry
// boundary.
type Spec struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Parameters      map[string]any `json:"parameters"` // JSON Schema for the input
	Timeout         time.Duration  `json:"timeout,omitempty"`
	MaxConcurrency  int            `json:"max_concurrency,omitempty"` // 0 = unlimited
	NeedsNetwork    bool           `json:"needs_network,omitempty"`
	NeedsFilesystem bool           `json:"needs_filesystem,omitempty"`
}

// Tool is a named unit of work with schema-validated input.
//
// Execute receives the validated arguments and an opaque metadata map the
// caller threads through every invocation (caller identity and the like).
// Failures the tool anticipates should be returned as *ToolError; anything
// else is treated as an unexpected error by the dispatcher.
type Tool interface {
	Spec() Spec
	Execute(ctx context.Context, args map[string]any, meta map[string]any) (any, error)
}

// ToolError is a typed tool execution failure.
type ToolError struct {
	Tool    string
	Message string
	Cause   error
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool %s: %s: %v", e.Tool, e.Message, e.Cause)
	}
	return fmt.Sprintf("tool %s: %s", e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// Errorf creates a ToolError with a formatted message.
func Errorf(tool, format string, args ...any) *ToolError {
	return &ToolError{Tool: tool, Message: fmt.Sprintf(format, args...)}
}

// ExecuteFunc adapts a function to the Tool interface.
type ExecuteFunc func(ctx context.Context, args map[string]any, meta map[string]any) (any, error)

type funcTool struct {
	spec Spec
	fn   ExecuteFunc
}

func (t *funcTool) Spec() Spec { return t.spec }

func (t *funcTool) Execute(ctx context.Context, args map[string]any, meta map[string]any) (any, error) {
	return t.fn(ctx, args, meta)
}

// NewTool creates a Tool from a spec and an execute function.
func NewTool(spec Spec, fn ExecuteFunc) Tool {
	return &funcTool{spec: spec, fn: fn}
}

// ObjectSchema builds a JSON Schema object from property definitions and a
// required-name list. Small helper so tool specs stay readable.
func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
