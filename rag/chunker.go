package rag

import "strings"

// Default chunking parameters.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// SplitText splits text by lines and merges them into chunks of roughly
// chunkSize characters, carrying overlap characters from the tail of the
// previous chunk into the next so retrieval does not lose sentences cut
// at a boundary.
func SplitText(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}

	var paras []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			paras = append(paras, trimmed)
		}
	}

	var chunks []string
	var cur []string
	curLen := 0

	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n"))
		}
	}

	for _, p := range paras {
		if curLen+len(p)+1 > chunkSize && len(cur) > 0 {
			flush()
			if chunkOverlap > 0 {
				last := chunks[len(chunks)-1]
				tail := last
				if len(tail) > chunkOverlap {
					tail = tail[len(tail)-chunkOverlap:]
				}
				cur = []string{tail, p}
				curLen = len(tail) + len(p) + 1
			} else {
				cur = []string{p}
				curLen = len(p)
			}
		} else {
			cur = append(cur, p)
			curLen += len(p) + 1
		}
	}
	flush()

	var out []string
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
