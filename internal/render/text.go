package render

import "strings"

// TextEmitter decides how the literal content of text runs is written. The
// serializer uses one emitter for every text run in a document.
type TextEmitter interface {
	Text(s string, lineStart bool) string
}

// VerbatimText writes text runs exactly as parsed. Characters such as '[' or
// '#' stay live, so [[wikilinks]] and #tags that the parser kept as plain
// text come back unchanged.
var VerbatimText TextEmitter = verbatimText{}

// EscapingText backslash-escapes every character that could start markup.
// Use it for text that did not come from markdown, such as converted HTML.
var EscapingText TextEmitter = escapingText{}

type verbatimText struct{}

func (verbatimText) Text(s string, _ bool) string {
	return s
}

type escapingText struct{}

const escapable = "\\`*_[]<>#|~"

func (escapingText) Text(s string, lineStart bool) string {
	var buf strings.Builder
	buf.Grow(len(s))
	atLineStart := lineStart
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case strings.IndexByte(escapable, c) >= 0:
			buf.WriteByte('\\')
		case c == '!' && i+1 < len(s) && s[i+1] == '[':
			buf.WriteByte('\\')
		case atLineStart && (c == '-' || c == '+' || c == '='):
			buf.WriteByte('\\')
		case atLineStart && isDigit(c):
			if j := digitRun(s, i); j < len(s) && (s[j] == '.' || s[j] == ')') {
				buf.WriteString(s[i:j])
				buf.WriteByte('\\')
				i = j
				c = s[j]
			}
		}
		buf.WriteByte(c)
		atLineStart = c == '\n'
	}
	return buf.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func digitRun(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}
