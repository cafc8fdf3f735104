package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONArray locates the first top-level JSON array in an LLM response
// and unmarshals it into out. Code-fence markers are stripped first. It
// returns false when no parseable array is present; the caller is expected
// to treat that as an empty result, not an error.
func ExtractJSONArray(content string, out any) bool {
	candidate := stripCodeFences(content)

	start := strings.IndexByte(candidate, '[')
	if start == -1 {
		return false
	}

	end := matchingBracket(candidate, start)
	if end == -1 {
		return false
	}

	return json.Unmarshal([]byte(candidate[start:end+1]), out) == nil
}

func stripCodeFences(content string) string {
	for _, marker := range []string{"```json", "```"} {
		startIdx := strings.Index(content, marker)
		if startIdx == -1 {
			continue
		}
		inner := content[startIdx+len(marker):]
		if endIdx := strings.Index(inner, "```"); endIdx != -1 {
			return inner[:endIdx]
		}
		return inner
	}
	return content
}

// matchingBracket finds the index of the ']' closing the '[' at start,
// skipping brackets inside JSON strings.
func matchingBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
