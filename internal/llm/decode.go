package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse is returned when a completion cannot be decoded into the
// requested structure. Callers substitute a default value rather than
// propagating it.
var ErrParse = errors.New("llm: unparseable structured output")

// DecodeStructured extracts the first JSON object from a completion and
// decodes it into v. Models routinely wrap JSON in code fences or prose, so
// the raw text is scanned for a balanced top-level object before decoding.
func DecodeStructured(content string, v any) error {
	obj, ok := extractJSONObject(content)
	if !ok {
		return fmt.Errorf("%w: no JSON object in completion", ErrParse)
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}

// extractJSONObject returns the first balanced {...} span in s, respecting
// string literals and escapes.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
