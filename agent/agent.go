// Package agent wraps the orchestration loop into a named agent with a
// tool selection, per-agent generation settings, and transcript
// persistence.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/memstore"
	"github.com/flexygent/flexygent/orchestration"
	"github.com/flexygent/flexygent/tooling"
)

// Config carries per-agent settings.
type Config struct {
	Name string `yaml:"name"`
	// ToolNames selects the tools offered to the model. Empty means
	// every registered tool plus the virtual clarification tool.
	ToolNames    []string `yaml:"tools"`
	SystemPrompt string   `yaml:"system_prompt"`
	Temperature  *float64 `yaml:"temperature"`
	MaxTokens    *int     `yaml:"max_tokens"`
}

// Agent runs tasks through the tool-calling loop and records transcripts.
type Agent struct {
	config       Config
	orchestrator *orchestration.Orchestrator
	registry     *tooling.Registry
	memory       memstore.Store
	logger       *slog.Logger
}

// New creates an Agent. memory may be nil to disable transcript
// persistence; logger nil falls back to slog.Default.
func New(config Config, orch *orchestration.Orchestrator, registry *tooling.Registry, memory memstore.Store, logger *slog.Logger) *Agent {
	if config.Name == "" {
		config.Name = "agent"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		config:       config,
		orchestrator: orch,
		registry:     registry,
		memory:       memory,
		logger:       logger.With("agent", config.Name),
	}
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.config.Name
}

// toolNames resolves the tool list for a run.
func (a *Agent) toolNames() []string {
	if len(a.config.ToolNames) > 0 {
		return a.config.ToolNames
	}
	names := a.registry.Names()
	return append(names, orchestration.AskUserTool)
}

// Process runs one task through the loop and persists the transcript.
func (a *Agent) Process(ctx context.Context, task string) (*orchestration.RunResult, error) {
	start := time.Now()
	result, err := a.orchestrator.Run(ctx, task, a.toolNames(), &orchestration.RunOptions{
		SystemPrompt: a.config.SystemPrompt,
		Temperature:  a.config.Temperature,
		MaxTokens:    a.config.MaxTokens,
		Meta:         map[string]any{"agent": a.config.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.config.Name, err)
	}

	a.logger.Info("task complete",
		"steps", result.Steps,
		"tool_calls", result.ToolCalls,
		"finish_reason", result.FinishReason,
		"duration", time.Since(start))

	a.saveTranscript(task, result)
	return result, nil
}

// transcript is the persisted record of one run.
type transcript struct {
	Agent        string            `json:"agent"`
	Task         string            `json:"task"`
	Final        string            `json:"final"`
	Steps        int               `json:"steps"`
	FinishReason string            `json:"finish_reason"`
	Messages     []chatllm.Message `json:"messages"`
	RecordedAt   time.Time         `json:"recorded_at"`
}

func (a *Agent) saveTranscript(task string, result *orchestration.RunResult) {
	if a.memory == nil {
		return
	}
	record := transcript{
		Agent:        a.config.Name,
		Task:         task,
		Final:        result.Final,
		Steps:        result.Steps,
		FinishReason: result.FinishReason,
		Messages:     result.Messages,
		RecordedAt:   time.Now().UTC(),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		a.logger.Warn("transcript marshal failed", "error", err)
		return
	}
	// Each run gets its own key; last_dialog always points at the most
	// recent one for quick lookup.
	key := fmt.Sprintf("dialog:%s:%s", a.config.Name, uuid.NewString())
	if err := a.memory.Set(key, string(raw)); err != nil {
		a.logger.Warn("transcript save failed", "key", key, "error", err)
		return
	}
	if err := a.memory.Set("last_dialog:"+a.config.Name, string(raw)); err != nil {
		a.logger.Warn("transcript save failed", "key", "last_dialog", "error", err)
	}
}

// LastTranscript returns the most recent persisted run, if any.
func (a *Agent) LastTranscript() (map[string]any, error) {
	if a.memory == nil {
		return nil, memstore.ErrNotFound
	}
	raw, err := a.memory.Get("last_dialog:" + a.config.Name)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("agent %s: decode transcript: %w", a.config.Name, err)
	}
	return record, nil
}
