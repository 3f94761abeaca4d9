// Package consoleui implements the orchestration UI for an interactive
// terminal session: confirmations and questions via prompts, progress
// events as colored log lines.
package consoleui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"

	"github.com/flexygent/flexygent/orchestration"
)

var (
	stepColor      = color.New(color.FgHiBlack)
	assistantColor = color.New(color.FgCyan)
	toolColor      = color.New(color.FgYellow)
	resultColor    = color.New(color.FgGreen)
	warnColor      = color.New(color.FgRed, color.Bold)
)

// Console is an interactive terminal UI.
type Console struct {
	out io.Writer
	// Quiet suppresses progress events, leaving only prompts.
	Quiet bool
}

// New creates a Console writing progress to out (os.Stdout when nil).
func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// ConfirmToolCall shows the pending call and asks for a yes/no answer.
func (c *Console) ConfirmToolCall(ctx context.Context, toolName string, arguments map[string]any, reason string) (bool, error) {
	args, _ := json.Marshal(arguments)
	toolColor.Fprintf(c.out, "tool call: %s %s\n", toolName, args)

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Run %s", toolName),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// AskUser poses the model's question. With options it shows a selection
// list (plus a free-text entry when allowed); without options it reads a
// line of text.
func (c *Console) AskUser(ctx context.Context, question string, options []string, allowFreeText bool) (string, error) {
	if len(options) == 0 {
		prompt := promptui.Prompt{Label: question}
		return prompt.Run()
	}

	if allowFreeText {
		sel := promptui.SelectWithAdd{
			Label:    question,
			Items:    options,
			AddLabel: "Other (type an answer)",
		}
		_, answer, err := sel.Run()
		return answer, err
	}

	sel := promptui.Select{Label: question, Items: options}
	_, answer, err := sel.Run()
	return answer, err
}

// EmitEvent renders a progress event as one colored line. It never
// blocks and never fails the caller.
func (c *Console) EmitEvent(kind orchestration.EventKind, payload map[string]any) {
	if c.Quiet {
		return
	}
	switch kind {
	case orchestration.EventLoopStep:
		stepColor.Fprintf(c.out, "· step %v\n", payload["step"])
	case orchestration.EventAssistantMessage:
		assistantColor.Fprintf(c.out, "assistant: %s\n", oneline(payload["content"]))
	case orchestration.EventToolCall:
		toolColor.Fprintf(c.out, "→ %v(%v)\n", payload["tool"], oneline(payload["arguments"]))
	case orchestration.EventAskUser:
		assistantColor.Fprintf(c.out, "? %v\n", payload["question"])
	case orchestration.EventToolResult:
		resultColor.Fprintf(c.out, "← %v: %s\n", payload["tool"], oneline(payload["result_preview"]))
	case orchestration.EventWarning:
		warnColor.Fprintf(c.out, "warning: %v\n", payload["reason"])
	default:
		stepColor.Fprintf(c.out, "%s: %v\n", kind, payload)
	}
}

// oneline flattens a value to a single trimmed line for display.
func oneline(v any) string {
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\n", " ")
	const max = 160
	if len(s) > max {
		s = s[:max] + "…"
	}
	return s
}
