package orchestration

import "context"

// UI is the boundary through which the orchestrator asks for human
// confirmation, asks clarifying questions, and reports progress.
//
// EmitEvent is fire-and-forget: implementations must never block the
// caller, and a failed or dropped event must not affect the run.
type UI interface {
	ConfirmToolCall(ctx context.Context, toolName string, arguments map[string]any, reason string) (bool, error)
	AskUser(ctx context.Context, question string, options []string, allowFreeText bool) (string, error)
	EmitEvent(kind EventKind, payload map[string]any)
}

// NoopUI auto-approves every confirmation, answers every question with an
// empty string, and discards every event. Used for unattended runs.
type NoopUI struct{}

func (NoopUI) ConfirmToolCall(ctx context.Context, toolName string, arguments map[string]any, reason string) (bool, error) {
	return true, nil
}

func (NoopUI) AskUser(ctx context.Context, question string, options []string, allowFreeText bool) (string, error) {
	return "", nil
}

func (NoopUI) EmitEvent(kind EventKind, payload map[string]any) {}
