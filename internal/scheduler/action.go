package scheduler

import (
	"encoding/json"
	"strings"

	worlderr "github.com/louisbranch/loreworld/internal/errors"
)

// Action is the decoded model output. Only Action is mandatory; the other
// fields are read per action shape.
type Action struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
	Text      string `json:"text,omitempty"`
	Item      string `json:"item,omitempty"`
}

// ParseAction extracts the first JSON object from a model response. The
// closing brace is a stop string, so a truncated trailing brace is repaired
// before decoding.
func ParseAction(raw string) (Action, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return Action{}, worlderr.New(worlderr.CodeParse, "response contains no JSON object")
	}

	candidate := firstObject(raw[start:])

	var action Action
	if err := json.Unmarshal([]byte(candidate), &action); err != nil {
		return Action{}, worlderr.Newf(worlderr.CodeParse, "decode action: %v", err)
	}
	if action.Action == "" {
		return Action{}, worlderr.New(worlderr.CodeParse, "response has no action field")
	}
	return action, nil
}

// firstObject slices the first balanced object from text, appending any
// closing braces a stop condition cut off.
func firstObject(text string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}

	// Truncated: close an unterminated string, then the open braces.
	repaired := text
	if inString {
		repaired += `"`
	}
	return repaired + strings.Repeat("}", depth)
}
