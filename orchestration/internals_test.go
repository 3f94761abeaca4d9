package orchestration

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseArgumentsRepairsMalformedJSON(t *testing.T) {
	// Trailing comma: invalid JSON, recoverable by repair.
	args, err := parseArguments(json.RawMessage(`{"text": "hi",}`))
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}
	if args["text"] != "hi" {
		t.Errorf("text = %v", args["text"])
	}
}

func TestParseArgumentsEmptyPayload(t *testing.T) {
	args, err := parseArguments(nil)
	if err != nil {
		t.Fatalf("parseArguments: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestTruncateResult(t *testing.T) {
	if got := truncateResult("short", 100); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateResult("short", 0); got != "short" {
		t.Errorf("limit 0 must disable truncation, got %q", got)
	}
	long := strings.Repeat("a", 20)
	got := truncateResult(long, 10)
	if got != strings.Repeat("a", 10)+truncationMarker {
		t.Errorf("got %q", got)
	}
}

func TestTruncateResultKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 30) // 2 bytes per rune
	got := truncateResult(s, 5)  // byte 5 falls mid-rune
	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("got %q, want marker suffix", got)
	}
	kept := strings.TrimSuffix(got, truncationMarker)
	if !utf8.ValidString(kept) {
		t.Errorf("truncation produced invalid UTF-8: %q", kept)
	}
	if len(kept) != 4 {
		t.Errorf("kept %d bytes, want 4 (backed up to rune boundary)", len(kept))
	}
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("中", 10) // 3 bytes per rune
	got := preview(s, 7)         // byte 7 falls mid-rune
	if !utf8.ValidString(got) {
		t.Errorf("preview produced invalid UTF-8: %q", got)
	}
	if len(got) != 6 {
		t.Errorf("preview length = %d bytes, want 6", len(got))
	}
	if got := preview(s, 100); got != s {
		t.Errorf("short input must pass through, got %q", got)
	}
}

func TestDetectRepeat(t *testing.T) {
	same := func(n int) []string {
		sigs := make([]string, n)
		for i := range sigs {
			sigs[i] = "tool:abcd"
		}
		return sigs
	}
	if !detectRepeat(same(6), 6) {
		t.Error("single-call repetition not detected")
	}
	if detectRepeat(same(3), 6) {
		t.Error("too few signatures must not trigger")
	}

	alternating := []string{"a:1", "b:2", "a:1", "b:2", "a:1", "b:2"}
	if !detectRepeat(alternating, 6) {
		t.Error("two-call cycle not detected")
	}

	varied := []string{"a:1", "b:2", "c:3", "d:4", "e:5", "f:6"}
	if detectRepeat(varied, 6) {
		t.Error("varied calls must not trigger")
	}
}

func TestCallSignatureDistinguishesArguments(t *testing.T) {
	a := callSignature("tool", json.RawMessage(`{"x":1}`))
	b := callSignature("tool", json.RawMessage(`{"x":2}`))
	if a == b {
		t.Error("different arguments must produce different signatures")
	}
	if !strings.HasPrefix(a, "tool:") {
		t.Errorf("signature = %q", a)
	}
}

func TestPolicyConfirmationRules(t *testing.T) {
	p := DefaultPolicy()
	if p.requiresConfirmation("anything") {
		t.Error("auto mode must not confirm")
	}

	p.Autonomy = AutonomyConfirm
	if !p.requiresConfirmation("anything") {
		t.Error("empty confirm set means confirm everything")
	}

	p.ConfirmTools = []string{"dangerous"}
	if !p.requiresConfirmation("dangerous") || p.requiresConfirmation("safe") {
		t.Error("non-empty confirm set must only gate listed tools")
	}
}

func TestAskUserDefinitionShape(t *testing.T) {
	def := AskUserDefinition()
	if def.Name != AskUserTool {
		t.Errorf("name = %q", def.Name)
	}
	props, ok := def.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatal("parameters missing properties")
	}
	for _, field := range []string{"question", "options", "allow_free_text"} {
		if _, ok := props[field]; !ok {
			t.Errorf("missing property %q", field)
		}
	}
	required, _ := def.Parameters["required"].([]string)
	if len(required) != 1 || required[0] != "question" {
		t.Errorf("required = %v", required)
	}
}

func TestChannelUIDropsWhenFull(t *testing.T) {
	ui := NewChannelUI(1)
	ui.EmitEvent(EventLoopStep, map[string]any{"step": 1})
	ui.EmitEvent(EventLoopStep, map[string]any{"step": 2}) // dropped, buffer full

	ui.Close()
	var got []Event
	for e := range ui.Events() {
		got = append(got, e)
	}
	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].Payload["step"] != 1 {
		t.Errorf("payload = %v", got[0].Payload)
	}

	// Emitting after close is a no-op, not a panic.
	ui.EmitEvent(EventWarning, nil)
}
