package orchestration

import "slices"

// Autonomy controls how much human oversight tool execution requires.
type Autonomy string

const (
	// AutonomyAuto runs permitted tools without user confirmation.
	AutonomyAuto Autonomy = "auto"
	// AutonomyConfirm asks the UI for confirmation (all tools, or just
	// the ones in ConfirmTools).
	AutonomyConfirm Autonomy = "confirm"
	// AutonomyNever hides all tools from the LLM for the run.
	AutonomyNever Autonomy = "never"
)

// Default limits applied by DefaultPolicy.
const (
	DefaultMaxSteps       = 8
	DefaultResultTruncate = 8000
)

// ToolUsePolicy is the pure-configuration contract governing a run. It is
// read-only for the duration of a run; callers own it and may share one
// value across runs.
type ToolUsePolicy struct {
	Autonomy Autonomy `yaml:"autonomy"`

	// AllowTools, when non-nil, is the only permitted set; it is
	// intersected with the caller-supplied tool list. DenyTools always
	// rejects, even for tools in the allow set. ConfirmTools names the
	// tools requiring confirmation in confirm mode; empty means every
	// tool requires confirmation.
	AllowTools   []string `yaml:"allow_tools"`
	DenyTools    []string `yaml:"deny_tools"`
	ConfirmTools []string `yaml:"confirm_tools"`

	// MaxSteps bounds the number of LLM invocations per run.
	// MaxToolCalls caps total tool calls across the run; zero means
	// unlimited. ResultTruncate is the serialized-result length limit
	// before results re-enter the conversation; zero disables it.
	MaxSteps          int  `yaml:"max_steps"`
	MaxToolCalls      int  `yaml:"max_tool_calls"`
	ParallelToolCalls bool `yaml:"parallel_tool_calls"`
	ResultTruncate    int  `yaml:"result_truncate"`
}

// DefaultPolicy returns the policy used when the caller supplies none:
// fully autonomous, 8 steps, parallel dispatch, 8000-character results.
func DefaultPolicy() ToolUsePolicy {
	return ToolUsePolicy{
		Autonomy:          AutonomyAuto,
		MaxSteps:          DefaultMaxSteps,
		ParallelToolCalls: true,
		ResultTruncate:    DefaultResultTruncate,
	}
}

func (p ToolUsePolicy) denies(name string) bool {
	return slices.Contains(p.DenyTools, name)
}

func (p ToolUsePolicy) requiresConfirmation(name string) bool {
	if p.Autonomy != AutonomyConfirm {
		return false
	}
	return len(p.ConfirmTools) == 0 || slices.Contains(p.ConfirmTools, name)
}
