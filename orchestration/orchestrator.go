// Package orchestration runs the LLM-driven tool-calling loop: it sends
// the conversation plus tool specifications to the model, executes the
// tool calls the model requests under an interaction policy, feeds the
// results back, and repeats until the model produces a final answer or a
// budget runs out.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/tooling"
)

// DefaultSystemPrompt seeds the conversation when the caller supplies no
// override.
const DefaultSystemPrompt = "You are FlexyGent. Decide which tools to call and when to stop. " +
	"Ask the user via the 'ui.ask' tool if you need preferences or missing inputs."

const (
	fallbackAnswer = "[Tool-calling loop ended without a definitive answer.]"
	capNotice      = "Tool call limit reached; provide the best answer without more tools."
	repeatNotice   = "You appear to be repeating the same tool calls; stop calling tools and provide your best answer."
)

// Orchestrator drives the tool-calling loop. It holds no per-run state;
// one Orchestrator may serve concurrent runs.
type Orchestrator struct {
	client       *chatllm.Client
	registry     *tooling.Registry
	policy       ToolUsePolicy
	ui           UI
	model        string
	systemPrompt string
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPolicy sets the interaction policy. A zero MaxSteps falls back to
// the default.
func WithPolicy(policy ToolUsePolicy) Option {
	return func(o *Orchestrator) { o.policy = policy }
}

// WithUI sets the UI adapter.
func WithUI(ui UI) Option {
	return func(o *Orchestrator) { o.ui = ui }
}

// WithModel sets the model requested from the LLM client.
func WithModel(model string) Option {
	return func(o *Orchestrator) { o.model = model }
}

// WithSystemPrompt overrides the default system prompt for all runs.
func WithSystemPrompt(prompt string) Option {
	return func(o *Orchestrator) { o.systemPrompt = prompt }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New creates an Orchestrator over the given LLM client and tool registry.
func New(client *chatllm.Client, registry *tooling.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:       client,
		registry:     registry,
		policy:       DefaultPolicy(),
		ui:           NoopUI{},
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.policy.MaxSteps <= 0 {
		o.policy.MaxSteps = DefaultMaxSteps
	}
	if o.ui == nil {
		o.ui = NoopUI{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// RunOptions carry per-run overrides. Meta is an opaque context object
// forwarded to every tool invocation.
type RunOptions struct {
	SystemPrompt string
	Temperature  *float64
	MaxTokens    *int
	Meta         map[string]any
}

// RunResult is the outcome of one run.
type RunResult struct {
	Final        string
	Messages     []chatllm.Message
	Steps        int
	FinishReason string
	ToolCalls    int
	Usage        chatllm.Usage
}

// Run executes the tool-calling loop for one user message. Tool failures,
// policy rejections, and declined confirmations surface to the model as
// error tool messages and never abort the run; only LLM transport errors
// propagate to the caller.
func (o *Orchestrator) Run(ctx context.Context, userMessage string, toolNames []string, opts *RunOptions) (*RunResult, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	effective := o.effectiveTools(toolNames)
	allowed := make(map[string]bool, len(effective))
	for _, name := range effective {
		allowed[name] = true
	}
	defs := toolDefinitions(o.registry, effective)

	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = o.systemPrompt
	}
	messages := []chatllm.Message{
		chatllm.SystemMessage(systemPrompt),
		chatllm.UserMessage(userMessage),
	}

	totalCalls := 0
	var usage chatllm.Usage
	var sigs []string

	for step := 0; step < o.policy.MaxSteps; step++ {
		o.ui.EmitEvent(EventLoopStep, map[string]any{"step": step + 1})
		o.warnOnContextPressure(messages)

		req := chatllm.Request{
			Model:       o.model,
			Messages:    messages,
			Tools:       defs,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
		if len(defs) > 0 {
			req.ToolChoice = &chatllm.ToolChoice{Mode: "auto"}
		}

		resp, err := o.client.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("llm step %d: %w", step+1, err)
		}
		usage = usage.Add(resp.Usage)

		content := resp.Text()
		calls := resp.ToolCallsFromResponse()
		o.logger.Debug("loop step",
			"step", step+1,
			"tool_calls", len(calls),
			"has_content", content != "")

		if content != "" {
			o.ui.EmitEvent(EventAssistantMessage, map[string]any{"content": content})
		}

		if len(calls) > 0 {
			messages = append(messages, resp.Message)
			totalCalls += len(calls)

			if o.policy.MaxToolCalls > 0 && totalCalls > o.policy.MaxToolCalls {
				// Reject the whole over-cap batch: each pending call is
				// answered with an error so no call dangles, then a system
				// note steers the model toward answering without tools.
				for _, call := range calls {
					messages = append(messages, o.errorResult(call, capNotice, nil))
				}
				messages = append(messages, chatllm.SystemMessage(capNotice))
				continue
			}

			for _, call := range calls {
				sigs = append(sigs, callSignature(call.Name, call.Arguments))
			}

			results := o.dispatch(ctx, calls, allowed, opts.Meta)
			messages = append(messages, results...)

			if detectRepeat(sigs, repeatWindow) {
				o.logger.Warn("repeating tool calls detected", "window", repeatWindow)
				o.ui.EmitEvent(EventWarning, map[string]any{"reason": "repeating_tool_calls"})
				messages = append(messages, chatllm.SystemMessage(repeatNotice))
			}
			continue
		}

		if content != "" {
			messages = append(messages, resp.Message)
			return &RunResult{
				Final:        content,
				Messages:     messages,
				Steps:        step + 1,
				FinishReason: resp.FinishReason.Reason,
				ToolCalls:    totalCalls,
				Usage:        usage,
			}, nil
		}

		// Neither content nor tool calls: unrecoverable non-response.
		break
	}

	return &RunResult{
		Final:        fallbackAnswer,
		Messages:     messages,
		Steps:        o.policy.MaxSteps,
		FinishReason: "max_steps",
		ToolCalls:    totalCalls,
		Usage:        usage,
	}, nil
}

// effectiveTools computes the tool list exposed to the LLM: empty in
// never mode, otherwise the caller's list intersected with the allow set
// when one is configured. Deny filtering happens per call so the model
// sees an explicit rejection rather than a silently missing tool.
func (o *Orchestrator) effectiveTools(toolNames []string) []string {
	if o.policy.Autonomy == AutonomyNever {
		return nil
	}
	if o.policy.AllowTools == nil {
		return toolNames
	}
	allowSet := make(map[string]bool, len(o.policy.AllowTools))
	for _, name := range o.policy.AllowTools {
		allowSet[name] = true
	}
	var effective []string
	for _, name := range toolNames {
		if allowSet[name] {
			effective = append(effective, name)
		}
	}
	return effective
}

// warnOnContextPressure emits a warning once the transcript approaches
// 80% of the model's context window.
func (o *Orchestrator) warnOnContextPressure(messages []chatllm.Message) {
	window := chatllm.ContextWindowFor(o.model)
	if window <= 0 {
		return
	}
	used := chatllm.CountMessageTokens(messages)
	if used*10 >= window*8 {
		o.logger.Warn("context window pressure", "tokens", used, "window", window)
		o.ui.EmitEvent(EventWarning, map[string]any{
			"reason": "context_pressure",
			"tokens": used,
			"window": window,
		})
	}
}
