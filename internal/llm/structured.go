package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a parsed struct after JSON extraction.
// Returns nil if valid, or a descriptive error if invalid.
type SchemaValidator[T any] func(T) error

// ExtractJSON extracts a JSON object of type T from raw LLM text output.
// It handles markdown code fences, leading/trailing text, and nested braces.
// If validator is non-nil, the extracted value is validated before return.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	return extract(raw, '{', '}', "object", validator)
}

// ExtractJSONArray extracts a JSON array of T from raw LLM text output.
// Models sometimes wrap the array in an object; a single top-level object
// holding exactly one array field is unwrapped. The validator runs per element.
func ExtractJSONArray[T any](raw string, validator SchemaValidator[T]) ([]T, error) {
	cleaned := stripCodeFences(raw)
	arrStart := strings.IndexByte(cleaned, '[')
	objStart := strings.IndexByte(cleaned, '{')

	if objStart != -1 && (arrStart == -1 || objStart < arrStart) {
		if items, ok := unwrapArrayObject[T](cleaned); ok {
			return validateEach(items, validator)
		}
	}

	items, err := extract[[]T](cleaned, '[', ']', "array", nil)
	if err != nil {
		return nil, err
	}
	return validateEach(items, validator)
}

func unwrapArrayObject[T any](s string) ([]T, bool) {
	block := balancedBlock(s, '{', '}')
	if block == "" {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitize(block)), &fields); err != nil || len(fields) != 1 {
		return nil, false
	}
	for _, raw := range fields {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		return items, true
	}
	return nil, false
}

func validateEach[T any](items []T, validator SchemaValidator[T]) ([]T, error) {
	if validator == nil {
		return items, nil
	}
	for i, item := range items {
		if err := validator(item); err != nil {
			return nil, fmt.Errorf("%w: item %d: validation failed: %v", ErrInvalidOutput, i, err)
		}
	}
	return items, nil
}

func extract[T any](raw string, open, close byte, kind string, validator SchemaValidator[T]) (T, error) {
	var zero T

	block := balancedBlock(stripCodeFences(raw), open, close)
	if block == "" {
		return zero, fmt.Errorf("%w: no JSON %s found in response", ErrInvalidOutput, kind)
	}

	var result T
	if err := json.Unmarshal([]byte(sanitize(block)), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// sanitize repairs the JSON defects local models commonly emit.
func sanitize(s string) string {
	return normalizeLeadingDecimals(stripJSONComments(s))
}

// stripCodeFences removes markdown code fence lines (```json, ```).
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// jsonScanner walks a JSON-ish byte string tracking whether the cursor is
// inside a string literal.
type jsonScanner struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it belongs to a string literal
// (including the quotes themselves).
func (sc *jsonScanner) step(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return true
	case sc.inString && c == '\\':
		sc.escaped = true
		return true
	case c == '"':
		sc.inString = !sc.inString
		return true
	default:
		return sc.inString
	}
}

// balancedBlock returns the first balanced open...close block in s.
func balancedBlock(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	var sc jsonScanner
	depth := 0
	for i := start; i < len(s); i++ {
		if sc.step(s[i]) {
			continue
		}
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// stripJSONComments removes // and /* */ comments outside string values.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) {
			b.WriteByte(c)
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '/' {
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		}
		if c == '/' && i+1 < len(s) && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end == -1 {
				break
			}
			i += end + 3
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// normalizeLeadingDecimals rewrites ".8" and "-.3" into "0.8" and "-0.3"
// outside string values.
func normalizeLeadingDecimals(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !sc.step(c) && c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)) {
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		}
		return s[i]
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
