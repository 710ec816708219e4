package extraction

import "strings"

// validEscapes is the set of characters allowed after a backslash inside a
// JSON string literal.
var validEscapes = map[byte]bool{
	'"': true, '\\': true, '/': true, 'b': true,
	'f': true, 'n': true, 'r': true, 't': true, 'u': true,
}

// RepairEscapes doubles the backslash of any invalid escape sequence found
// inside a string literal so the result is syntactically valid JSON. LaTeX
// in extracted text produces sequences like `\frac` and `\lim` that the
// provider emits unescaped.
//
// The scan is a small state machine: outside string literals everything is
// copied verbatim; inside, a backslash followed by a character outside the
// JSON escape set is emitted as a doubled backslash plus that character.
// `\u` sequences are recognized as valid but not decoded. A trailing
// backslash at end of input is copied as-is.
func RepairEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			b.WriteByte(c)
			if c == '"' {
				inString = true
			}
			continue
		}

		if c == '\\' {
			if i+1 >= len(s) {
				// Trailing backslash, nothing to escape against.
				b.WriteByte(c)
				continue
			}
			next := s[i+1]
			if validEscapes[next] {
				b.WriteByte(c)
				b.WriteByte(next)
			} else {
				b.WriteByte('\\')
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			i++
			continue
		}

		b.WriteByte(c)
		if c == '"' {
			inString = false
		}
	}

	return b.String()
}
