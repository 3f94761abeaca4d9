// Package builtin provides the stock tools shipped with the agent:
// echo and clock for smoke-testing the loop, web.fetch for retrieval,
// and memory tools backed by a memstore.Store.
package builtin

import (
	"context"
	"strings"
	"time"

	"github.com/flexygent/flexygent/tooling"
)

// Echo returns the system.echo tool. It is mostly useful for exercising
// the tool-calling loop end to end: it supports an artificial delay so
// timeout and concurrency behavior can be observed.
func Echo() tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "system.echo",
		Description: "Echo a string with optional uppercasing and repetition.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to echo back.",
			},
			"uppercase": map[string]any{
				"type":        "boolean",
				"description": "If true, return the text in uppercase.",
			},
			"repeat": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     10,
				"description": "Number of times to repeat the text (1-10).",
			},
			"delay_ms": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     5000,
				"description": "Optional artificial delay in milliseconds.",
			},
		}, "text"),
		Timeout: 5 * time.Second,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		text, _ := tooling.StringArg(args, "text")
		if upper, _ := tooling.BoolArg(args, "uppercase"); upper {
			text = strings.ToUpper(text)
		}
		repeat := 1
		if n, ok := tooling.IntArg(args, "repeat"); ok && n > 0 {
			repeat = n
		}
		if delay, ok := tooling.IntArg(args, "delay_ms"); ok && delay > 0 {
			select {
			case <-time.After(time.Duration(delay) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		parts := make([]string, repeat)
		for i := range parts {
			parts[i] = text
		}
		result := strings.Join(parts, " ")
		return map[string]any{"result": result, "length": len(result)}, nil
	})
}

// Clock returns the system.time tool reporting the current time.
func Clock() tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "system.time",
		Description: "Report the current date and time, optionally in a named IANA time zone.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA time zone name, e.g. 'America/New_York'. Defaults to UTC.",
			},
		}),
		Timeout: time.Second,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		loc := time.UTC
		if name, ok := tooling.StringArg(args, "timezone"); ok && name != "" {
			l, err := time.LoadLocation(name)
			if err != nil {
				return nil, tooling.Errorf("system.time", "unknown time zone %q", name)
			}
			loc = l
		}
		now := time.Now().In(loc)
		return map[string]any{
			"iso":      now.Format(time.RFC3339),
			"unix":     now.Unix(),
			"timezone": loc.String(),
		}, nil
	})
}

// RegisterAll registers every builtin tool except the memory tools,
// which need a store and are registered via RegisterMemory.
func RegisterAll(reg *tooling.Registry) error {
	for _, tool := range []tooling.Tool{Echo(), Clock(), Fetch(nil)} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
