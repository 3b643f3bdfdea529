package parser

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindWikiLink is the goldmark node kind for [[...]] and ![[...]].
var KindWikiLink = ast.NewNodeKind("WikiLink")

// WikiLink is a goldmark inline node for a wikilink or an embed.
type WikiLink struct {
	ast.BaseInline

	Raw   []byte // Text between the brackets
	Embed bool   // True for ![[...]]
}

// Kind implements ast.Node.
func (n *WikiLink) Kind() ast.NodeKind {
	return KindWikiLink
}

// Dump implements ast.Node.
func (n *WikiLink) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Raw":   string(n.Raw),
		"Embed": strconv.FormatBool(n.Embed),
	}, nil)
}

var (
	openWikiLink  = []byte("[[")
	closeWikiLink = []byte("]]")
)

// wikiLinkParser runs before the standard link parser so [[...]] never
// becomes a pair of nested bracket links.
type wikiLinkParser struct{}

func (p *wikiLinkParser) Trigger() []byte {
	return []byte{'!', '['}
}

func (p *wikiLinkParser) Parse(parent ast.Node, block text.Reader, pc gparser.Context) ast.Node {
	line, _ := block.PeekLine()
	embed := len(line) > 0 && line[0] == '!'
	open := 0
	if embed {
		open = 1
	}
	if !bytes.HasPrefix(line[open:], openWikiLink) {
		return nil
	}
	open += len(openWikiLink)

	end := bytes.Index(line[open:], closeWikiLink)
	if end < 0 {
		return nil
	}
	raw := line[open : open+end]
	if len(bytes.TrimSpace(raw)) == 0 || bytes.ContainsAny(raw, "[]") {
		return nil
	}

	block.Advance(open + end + len(closeWikiLink))
	return &WikiLink{
		Raw:   append([]byte(nil), raw...),
		Embed: embed,
	}
}
