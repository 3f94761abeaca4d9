package orchestration

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// repeatWindow is the number of trailing tool-call signatures examined
// for repeating patterns.
const repeatWindow = 6

// callSignature computes a deterministic signature for a tool call
// (name + hash of arguments).
func callSignature(name string, arguments json.RawMessage) string {
	h := sha256.Sum256(arguments)
	return fmt.Sprintf("%s:%x", name, h[:8])
}

// detectRepeat reports whether the last window signatures follow a
// repeating pattern of length 1, 2, or 3. A stuck model tends to reissue
// the identical call (or a short cycle of calls) once its plan stops
// making progress.
func detectRepeat(sigs []string, window int) bool {
	if len(sigs) < window {
		return false
	}
	tail := sigs[len(sigs)-window:]

	for patternLen := 1; patternLen <= 3; patternLen++ {
		if window%patternLen != 0 {
			continue
		}
		pattern := tail[:patternLen]
		allMatch := true
		for i := patternLen; i < window && allMatch; i += patternLen {
			for j := 0; j < patternLen; j++ {
				if tail[i+j] != pattern[j] {
					allMatch = false
					break
				}
			}
		}
		if allMatch {
			return true
		}
	}
	return false
}
