package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/sync/errgroup"

	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/tooling"
)

// confirmReason is the fixed reason string passed to UI confirmations.
const confirmReason = "policy_confirmation"

// callKind distinguishes real tool calls (routed to the registry) from
// interactive calls (routed to the UI).
type callKind int

const (
	callReal callKind = iota
	callInteractive
)

func classifyCall(name string) callKind {
	if name == AskUserTool {
		return callInteractive
	}
	return callReal
}

// dispatch executes one batch of tool calls and returns a tool message per
// call, in the original request order regardless of execution order. It
// never returns an error: every failure becomes an error payload inside
// the corresponding tool message.
func (o *Orchestrator) dispatch(ctx context.Context, calls []chatllm.ToolCall, allowed map[string]bool, meta map[string]any) []chatllm.Message {
	results := make([]chatllm.Message, len(calls))

	if o.policy.ParallelToolCalls && len(calls) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, call := range calls {
			g.Go(func() error {
				results[i] = o.dispatchOne(gctx, call, allowed, meta)
				return nil
			})
		}
		// Workers only write their own slot and never fail.
		_ = g.Wait()
		return results
	}

	for i, call := range calls {
		results[i] = o.dispatchOne(ctx, call, allowed, meta)
	}
	return results
}

func (o *Orchestrator) dispatchOne(ctx context.Context, call chatllm.ToolCall, allowed map[string]bool, meta map[string]any) chatllm.Message {
	o.ui.EmitEvent(EventToolCall, map[string]any{
		"id":        call.ID,
		"tool":      call.Name,
		"arguments": string(call.Arguments),
	})

	if !allowed[call.Name] {
		return o.errorResult(call, fmt.Sprintf("Tool '%s' is not allowed by policy.", call.Name), nil)
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return o.errorResult(call, fmt.Sprintf("Invalid JSON arguments: %v", err), map[string]any{
			"raw": string(call.Arguments),
		})
	}

	// Asking a question is never itself a destructive action, so the
	// interactive path bypasses the confirmation and deny gates.
	if classifyCall(call.Name) == callInteractive {
		return o.askUser(ctx, call, args)
	}

	if o.policy.requiresConfirmation(call.Name) {
		ok, err := o.ui.ConfirmToolCall(ctx, call.Name, args, confirmReason)
		if err != nil || !ok {
			return o.errorResult(call, "User denied tool call.", nil)
		}
	}

	if o.policy.denies(call.Name) {
		return o.errorResult(call, "Tool is denied by policy.", nil)
	}

	// Execution failures share the truncate/event tail with successes:
	// the error payload re-enters the conversation bounded like any
	// other result, and observers see a tool_result either way.
	out, err := o.registry.Execute(ctx, call.Name, args, meta)
	payload := out
	isError := err != nil
	if err != nil {
		var toolErr *tooling.ToolError
		if errors.As(err, &toolErr) {
			payload = map[string]any{"error": toolErr.Error()}
		} else {
			payload = map[string]any{"error": fmt.Sprintf("Unexpected tool error: %v", err)}
		}
	}

	serialized := truncateResult(serializeResult(payload), o.policy.ResultTruncate)
	o.ui.EmitEvent(EventToolResult, map[string]any{
		"tool":           call.Name,
		"result_preview": preview(serialized, previewLength),
	})
	return chatllm.ToolResultMessage(call.Name, call.ID, serialized, isError)
}

func (o *Orchestrator) askUser(ctx context.Context, call chatllm.ToolCall, args map[string]any) chatllm.Message {
	question, _ := tooling.StringArg(args, "question")
	question = strings.TrimSpace(question)
	options, _ := tooling.StringSliceArg(args, "options")
	allowFreeText := true
	if v, ok := tooling.BoolArg(args, "allow_free_text"); ok {
		allowFreeText = v
	}

	o.ui.EmitEvent(EventAskUser, map[string]any{"question": question, "options": options})
	answer, err := o.ui.AskUser(ctx, question, options, allowFreeText)
	if err != nil {
		return o.errorResult(call, fmt.Sprintf("Unexpected tool error: %v", err), nil)
	}
	return chatllm.ToolResultMessage(call.Name, call.ID, serializeResult(map[string]any{"answer": answer}), false)
}

// errorResult wraps a failure into a tool message so the model can see it
// and adapt; no dispatch failure ever aborts the run.
func (o *Orchestrator) errorResult(call chatllm.ToolCall, message string, extra map[string]any) chatllm.Message {
	payload := map[string]any{"error": message}
	for k, v := range extra {
		payload[k] = v
	}
	return chatllm.ToolResultMessage(call.Name, call.ID, serializeResult(payload), true)
}

// parseArguments decodes the raw argument payload, attempting a repair
// pass on malformed JSON before giving up. Models occasionally emit
// unescaped quotes or trailing commas that repair recovers cleanly.
func parseArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		trimmed = "{}"
	}
	var args map[string]any
	err := json.Unmarshal([]byte(trimmed), &args)
	if err == nil {
		return args, nil
	}
	if repaired, rerr := jsonrepair.JSONRepair(trimmed); rerr == nil {
		if uerr := json.Unmarshal([]byte(repaired), &args); uerr == nil {
			return args, nil
		}
	}
	return nil, err
}

func serializeResult(out any) string {
	if s, ok := out.(string); ok {
		return s
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf("%v", out)
	}
	return string(raw)
}
