package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindTag is the goldmark node kind for #tags.
var KindTag = ast.NewNodeKind("Tag")

// Tag is a goldmark inline node for a #tag.
type Tag struct {
	ast.BaseInline

	Name []byte // Tag name without the leading '#'
}

// Kind implements ast.Node.
func (n *Tag) Kind() ast.NodeKind {
	return KindTag
}

// Dump implements ast.Node.
func (n *Tag) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": string(n.Name)}, nil)
}

type tagParser struct{}

func (p *tagParser) Trigger() []byte {
	return []byte{'#'}
}

func (p *tagParser) Parse(parent ast.Node, block text.Reader, pc gparser.Context) ast.Node {
	if prev := block.PrecendingCharacter(); !unicode.IsSpace(prev) {
		return nil
	}
	line, _ := block.PeekLine()
	name := scanTagName(line[1:])
	if name == 0 {
		return nil
	}
	block.Advance(1 + name)
	return &Tag{Name: append([]byte(nil), line[1:1+name]...)}
}

// scanTagName returns the byte length of the tag name at the start of b, or 0
// when b does not start a valid tag (empty or digits only).
func scanTagName(b []byte) int {
	n := 0
	digitsOnly := true
	for n < len(b) {
		r, size := utf8.DecodeRune(b[n:])
		if !isTagRune(r) {
			break
		}
		if !unicode.IsDigit(r) {
			digitsOnly = false
		}
		n += size
	}
	if digitsOnly {
		return 0
	}
	return n
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '/'
}
