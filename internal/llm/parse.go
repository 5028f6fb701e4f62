// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencedJSONPattern matches a JSON object inside a markdown code fence.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractJSON pulls a JSON object out of a model response. Models are
// asked for bare JSON but frequently wrap it in a markdown fence or
// surrounding prose; all three shapes are accepted.
func ExtractJSON(response string) ([]byte, error) {
	trimmed := strings.TrimSpace(response)

	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed), nil
	}

	if m := fencedJSONPattern.FindStringSubmatch(trimmed); m != nil {
		if json.Valid([]byte(m[1])) {
			return []byte(m[1]), nil
		}
	}

	// Last resort: the outermost brace-delimited span.
	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start >= 0 && end > start {
		candidate := trimmed[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
	}

	return nil, fmt.Errorf("no JSON object found in response")
}
