package chatllm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
)

// CountTokens estimates the token count of text. It uses the cl100k_base
// tokenizer when available and falls back to a length/4 approximation when
// the encoding cannot be loaded (e.g. offline).
func CountTokens(text string) int {
	tokenizerOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tokenizer = enc
		}
	})
	if tokenizer == nil {
		return len(text) / 4
	}
	return len(tokenizer.Encode(text, nil, nil))
}

// CountMessageTokens estimates the total token count of a message list,
// including serialized tool calls and tool results.
func CountMessageTokens(messages []Message) int {
	total := 0
	for _, msg := range messages {
		for _, part := range msg.Content {
			switch part.Kind {
			case ContentText:
				total += CountTokens(part.Text)
			case ContentToolCall:
				if part.ToolCall != nil {
					total += CountTokens(part.ToolCall.Name) + CountTokens(string(part.ToolCall.Arguments))
				}
			case ContentToolResult:
				if part.ToolResult != nil {
					total += CountTokens(part.ToolResult.Content)
				}
			}
		}
	}
	return total
}
