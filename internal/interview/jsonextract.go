package interview

import (
	"encoding/json"
	"strings"
)

// ExtractJSON finds the first JSON object or array in a model response.
// Markdown fences are stripped first. A bracket that does not open valid JSON
// (such as a "[Evaluation]" heading) is skipped and the search resumes after
// it. An array cut off mid-stream is repaired by closing it after the last
// complete element object.
func ExtractJSON(text string) (string, bool) {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	for offset := 0; offset < len(text); {
		i := strings.IndexAny(text[offset:], "{[")
		if i < 0 {
			break
		}
		if s, ok := extractAt(text[offset+i:]); ok {
			return s, true
		}
		offset += i + 1
	}
	return "", false
}

// extractAt reads the JSON value opened by candidate[0]
func extractAt(candidate string) (string, bool) {
	if end := matchingClose(candidate); end >= 0 {
		if s := candidate[:end+1]; json.Valid([]byte(s)) {
			return s, true
		}
	}

	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	return repairTruncatedArray(candidate)
}

// matchingClose returns the index of the bracket closing s[0], honoring JSON
// string literals and escapes. It returns -1 when s is unbalanced.
func matchingClose(s string) int {
	open := s[0]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func repairTruncatedArray(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") {
		return "", false
	}

	lastComplete := -1
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				lastComplete = i
			}
		}
	}
	if lastComplete < 0 {
		return "", false
	}

	fixed := s[:lastComplete+1] + "]"
	if !json.Valid([]byte(fixed)) {
		return "", false
	}
	return fixed, true
}
