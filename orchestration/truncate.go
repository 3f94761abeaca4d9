package orchestration

import "unicode/utf8"

// truncationMarker is appended to serialized tool results cut at the
// policy's truncation length.
const truncationMarker = "...[truncated]"

// previewLength bounds the result excerpt carried in tool_result events.
const previewLength = 400

func truncateResult(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:runeBoundary(s, limit)] + truncationMarker
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:runeBoundary(s, n)]
}

// runeBoundary backs idx up to the start of the rune containing it so a
// byte-indexed cut never splits a multi-byte character.
func runeBoundary(s string, idx int) int {
	for idx > 0 && !utf8.RuneStart(s[idx]) {
		idx--
	}
	return idx
}
