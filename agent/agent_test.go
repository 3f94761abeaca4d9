package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/memstore"
	"github.com/flexygent/flexygent/orchestration"
	"github.com/flexygent/flexygent/tooling"
)

type scriptedProvider struct {
	mu        sync.Mutex
	responses []*chatllm.Response
	requests  []chatllm.Request
	calls     int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req chatllm.Request) (*chatllm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.calls >= len(p.responses) {
		return nil, errors.New("script exhausted")
	}
	resp := p.responses[p.calls]
	p.calls++
	return resp, nil
}

func newAgent(t *testing.T, provider *scriptedProvider, config Config, memory memstore.Store) (*Agent, *tooling.Registry) {
	t.Helper()
	reg := tooling.NewRegistry()
	require.NoError(t, reg.Register(tooling.NewTool(tooling.Spec{
		Name:        "system.echo",
		Description: "Echo text",
		Parameters: tooling.ObjectSchema(map[string]any{
			"text": map[string]any{"type": "string"},
		}, "text"),
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		text, _ := tooling.StringArg(args, "text")
		return map[string]any{"result": text}, nil
	})))

	client := chatllm.NewClient(chatllm.WithProvider("scripted", provider))
	orch := orchestration.New(client, reg)
	return New(config, orch, reg, memory, nil), reg
}

func TestProcessReturnsFinalAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []*chatllm.Response{{
		Message:      chatllm.AssistantMessage("done"),
		FinishReason: chatllm.FinishReason{Reason: "stop"},
	}}}
	a, _ := newAgent(t, provider, Config{Name: "helper"}, nil)

	result, err := a.Process(context.Background(), "do something")
	require.NoError(t, err)
	assert.Equal(t, "done", result.Final)
	assert.Equal(t, 1, result.Steps)
}

func TestProcessDefaultsToAllToolsPlusAsk(t *testing.T) {
	provider := &scriptedProvider{responses: []*chatllm.Response{{
		Message:      chatllm.AssistantMessage("ok"),
		FinishReason: chatllm.FinishReason{Reason: "stop"},
	}}}
	a, _ := newAgent(t, provider, Config{Name: "helper"}, nil)

	_, err := a.Process(context.Background(), "task")
	require.NoError(t, err)

	var names []string
	for _, def := range provider.requests[0].Tools {
		names = append(names, def.Name)
	}
	assert.Contains(t, names, "system.echo")
	assert.Contains(t, names, orchestration.AskUserTool)
}

func TestProcessRestrictsToConfiguredTools(t *testing.T) {
	provider := &scriptedProvider{responses: []*chatllm.Response{{
		Message:      chatllm.AssistantMessage("ok"),
		FinishReason: chatllm.FinishReason{Reason: "stop"},
	}}}
	a, _ := newAgent(t, provider, Config{Name: "helper", ToolNames: []string{"system.echo"}}, nil)

	_, err := a.Process(context.Background(), "task")
	require.NoError(t, err)
	require.Len(t, provider.requests[0].Tools, 1)
	assert.Equal(t, "system.echo", provider.requests[0].Tools[0].Name)
}

func TestProcessPersistsTranscript(t *testing.T) {
	provider := &scriptedProvider{responses: []*chatllm.Response{{
		Message:      chatllm.AssistantMessage("saved answer"),
		FinishReason: chatllm.FinishReason{Reason: "stop"},
	}}}
	store := memstore.NewMemoryStore()
	a, _ := newAgent(t, provider, Config{Name: "helper"}, store)

	_, err := a.Process(context.Background(), "remember this")
	require.NoError(t, err)

	keys, err := store.Keys("dialog:helper:")
	require.NoError(t, err)
	require.Len(t, keys, 1)

	raw, err := store.Get(keys[0])
	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	assert.Equal(t, "remember this", record["task"])
	assert.Equal(t, "saved answer", record["final"])

	last, err := a.LastTranscript()
	require.NoError(t, err)
	assert.Equal(t, "saved answer", last["final"])
}

func TestLastTranscriptWithoutMemory(t *testing.T) {
	provider := &scriptedProvider{}
	a, _ := newAgent(t, provider, Config{Name: "helper"}, nil)
	_, err := a.LastTranscript()
	assert.ErrorIs(t, err, memstore.ErrNotFound)
}

func TestProcessPropagatesLLMError(t *testing.T) {
	provider := &scriptedProvider{} // empty script errors immediately
	a, _ := newAgent(t, provider, Config{Name: "helper"}, nil)
	_, err := a.Process(context.Background(), "task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent helper")
}
