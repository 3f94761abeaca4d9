package consoleui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flexygent/flexygent/orchestration"
)

// The interactive prompt paths need a terminal; event rendering does not.

func TestConsoleImplementsUI(t *testing.T) {
	var _ orchestration.UI = New(nil)
}

func TestEmitEventRendersKinds(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	c.EmitEvent(orchestration.EventLoopStep, map[string]any{"step": 1})
	c.EmitEvent(orchestration.EventAssistantMessage, map[string]any{"content": "thinking\nabout it"})
	c.EmitEvent(orchestration.EventToolCall, map[string]any{"tool": "system.echo", "arguments": `{"text":"hi"}`})
	c.EmitEvent(orchestration.EventToolResult, map[string]any{"tool": "system.echo", "result_preview": "hi"})
	c.EmitEvent(orchestration.EventWarning, map[string]any{"reason": "context_pressure"})

	out := buf.String()
	assert.Contains(t, out, "step 1")
	assert.Contains(t, out, "thinking about it")
	assert.Contains(t, out, "system.echo")
	assert.Contains(t, out, "context_pressure")
	assert.NotContains(t, out, "\nabout")
}

func TestQuietSuppressesEvents(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	c.Quiet = true
	c.EmitEvent(orchestration.EventLoopStep, map[string]any{"step": 1})
	assert.Empty(t, buf.String())
}

func TestOnelineTruncates(t *testing.T) {
	long := strings.Repeat("x", 400)
	got := oneline(long)
	assert.LessOrEqual(t, len(got), 170)
	assert.True(t, strings.HasSuffix(got, "…"))
}
