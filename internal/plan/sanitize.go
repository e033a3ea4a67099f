// Package plan turns raw strategist output into validated task plans.
package plan

import (
	"strings"
	"unicode"
)

// Sanitize extracts the first outermost bracket-balanced JSON structure
// from noisy model output. Markdown code fences and line comments are
// stripped, and non-printable bytes outside basic whitespace removed.
// Sanitize is idempotent: already-clean JSON is returned unchanged.
//
// If no bracketed structure is found the cleaned text is returned as-is
// and the caller surfaces the resulting parse error.
func Sanitize(raw string) string {
	cleaned := stripControl(raw)
	cleaned = stripFences(cleaned)
	cleaned = stripLineComments(cleaned)
	cleaned = strings.TrimSpace(cleaned)

	if body, ok := extractBalanced(cleaned); ok {
		return body
	}
	return cleaned
}

// stripControl removes non-printable runes, keeping tab, newline and
// carriage return.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// stripFences drops markdown code fence lines (``` or ```json etc).
func stripFences(s string) string {
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

// stripLineComments drops lines that consist solely of a //-style comment.
// Comments embedded after JSON content are left alone so URLs inside
// string values survive.
func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// extractBalanced returns the first outermost balanced [...] or {...}
// substring. Balancing is quote-aware so brackets inside JSON strings
// do not count.
func extractBalanced(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '[' || s[i] == '{' {
			start = i
			open = s[i]
			if open == '[' {
				close = ']'
			} else {
				close = '}'
			}
			break
		}
	}
	if start == -1 {
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
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
