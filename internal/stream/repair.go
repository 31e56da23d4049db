package stream

import "strings"

// Repair attempts to close a truncated JSON object. It appends at most one
// "]", when the text leaves an array open, and at most one "}", when the
// text does not already end with one. Trailing whitespace is ignored.
// The second result reports whether anything was appended.
//
// Repair does not validate its output; nested truncation beyond one array
// and one object is left broken.
func Repair(text string) (string, bool) {
	fixed := strings.TrimRightFunc(text, isJSONSpace)
	if openArrays(fixed) > 0 && !strings.HasSuffix(fixed, "]") {
		fixed += "]"
	}
	if !strings.HasSuffix(fixed, "}") {
		fixed += "}"
	}
	return fixed, fixed != strings.TrimRightFunc(text, isJSONSpace)
}

// openArrays counts "[" minus "]" outside string literals.
func openArrays(text string) int {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '[':
			depth++
		case c == ']':
			depth--
		}
	}
	return depth
}

func isJSONSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
