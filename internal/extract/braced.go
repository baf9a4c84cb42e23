// Package extract locates JSON payloads embedded in retail product pages and
// resolves product fields from them. Page data arrives inside arbitrary,
// versioned script blobs, so nothing here assumes a schema: the payload is
// decoded into untyped JSON and searched.
package extract

import "strings"

// BracedSegment returns the balanced {...} object that follows the first
// occurrence of marker in text. The scan is string-aware: braces inside JSON
// string literals (including escaped quotes) do not affect nesting depth.
//
// The second return value is false when the marker is absent, no opening
// brace follows it, or the text ends before the object closes. Absence is
// not an error — callers try the next candidate source.
func BracedSegment(text, marker string) (string, bool) {
	at := strings.Index(text, marker)
	if at < 0 {
		return "", false
	}

	open := strings.IndexByte(text[at+len(marker):], '{')
	if open < 0 {
		return "", false
	}
	start := at + len(marker) + open

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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	// Ran out of text with the object still open.
	return "", false
}
