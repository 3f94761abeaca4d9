// Package chatllm provides a provider-agnostic chat-completions client.
//
// It wraps gollm behind a small unified surface: a message/content-part
// model that carries tool calls and tool results, a Client that routes
// requests to registered provider adapters through middleware, a typed
// error hierarchy with retryability classification, and a generic Retry
// helper with exponential backoff.
//
// The orchestration package consumes Client.Complete as a black-box
// capability. Retry behavior belongs to this layer (install it with
// RetryMiddleware); callers that need different semantics can wrap the
// client themselves.
package chatllm
