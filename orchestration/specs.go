package orchestration

import (
	"github.com/flexygent/flexygent/chatllm"
	"github.com/flexygent/flexygent/tooling"
)

// AskUserTool is the reserved name of the virtual clarification tool. It
// has no Registry entry; calls to it are routed to the UI instead.
const AskUserTool = "ui.ask"

// AskUserDefinition returns the hand-authored LLM-facing schema for the
// virtual clarification tool.
func AskUserDefinition() chatllm.ToolDefinition {
	return chatllm.ToolDefinition{
		Name:        AskUserTool,
		Description: "Ask the user a question and wait for their response. Use when you need a preference or missing input.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "Question to ask the user",
				},
				"options": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Optional multiple-choice options",
				},
				"allow_free_text": map[string]any{
					"type":        "boolean",
					"default":     true,
					"description": "Allow free-text answers",
				},
			},
			"required": []string{"question"},
		},
	}
}

// toolDefinitions converts the effective tool list into LLM-consumable
// specifications by querying the registry. The virtual clarification tool
// gets its hand-authored schema; names with no registry entry are skipped.
func toolDefinitions(reg *tooling.Registry, names []string) []chatllm.ToolDefinition {
	defs := make([]chatllm.ToolDefinition, 0, len(names))
	for _, name := range names {
		if name == AskUserTool {
			defs = append(defs, AskUserDefinition())
			continue
		}
		spec, ok := reg.SpecFor(name)
		if !ok {
			continue
		}
		defs = append(defs, chatllm.ToolDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Parameters,
		})
	}
	return defs
}
