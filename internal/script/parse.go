package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoScript indicates no parseable script object was found in the
// collaborator response.
var ErrNoScript = errors.New("no script object found in response")

// Parse extracts a Script from raw collaborator output. Models wrap
// JSON in markdown fences, prepend prose, emit arrays, or concatenate
// objects; each recovery step here corresponds to a failure mode seen
// in practice.
func Parse(raw string) (*Script, error) {
	text := stripFences(raw)

	obj, err := firstJSONValue(text)
	if err != nil {
		return nil, err
	}

	// An array response wraps the script as its first element.
	if strings.HasPrefix(obj, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(obj), &arr); err != nil || len(arr) == 0 {
			return nil, fmt.Errorf("%w: unusable array response", ErrNoScript)
		}
		obj = string(arr[0])
	}

	var s Script
	if err := json.Unmarshal([]byte(obj), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoScript, err)
	}
	if len(s.Scenes) == 0 {
		return nil, fmt.Errorf("%w: script has no scenes", ErrNoScript)
	}
	return &s, nil
}

// stripFences removes markdown code fences if the payload is wrapped
// in them.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// firstJSONValue scans for the first balanced JSON object or array in
// text, tolerating prose before and after (including a second
// concatenated object).
func firstJSONValue(text string) (string, error) {
	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no JSON delimiter", ErrNoScript)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced JSON", ErrNoScript)
}
