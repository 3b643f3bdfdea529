// Package export writes frozen documents to formats other than markdown.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/fumiama/go-docx"
)

const codeFont = "Consolas"

// DOCX writes tree as a Word document. Headings keep their level as
// HeadingN paragraph styles; lists and tables are flattened to paragraphs.
func DOCX(tree *doctree.DocTree, w io.Writer) error {
	doc := docx.New().WithDefaultTheme()
	b := &docxBuilder{doc: doc}
	b.blocks(tree.Children, 0)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type docxBuilder struct {
	doc *docx.Docx
}

// runStyle is the character formatting inherited by nested inlines.
type runStyle struct {
	bold   bool
	italic bool
	code   bool
}

func (s runStyle) apply(r *docx.Run) {
	if s.bold {
		r.Bold()
	}
	if s.italic {
		r.Italic()
	}
	if s.code {
		r.Font(codeFont, codeFont, codeFont, "")
	}
}

func (b *docxBuilder) blocks(nodes []doctree.Node, depth int) {
	for _, n := range nodes {
		b.block(n, depth)
	}
}

func (b *docxBuilder) block(n doctree.Node, depth int) {
	switch n.Kind {
	case doctree.KindHeading:
		p := b.doc.AddParagraph().Style("Heading" + strconv.Itoa(min(max(n.Level, 1), 6)))
		b.inlines(p, n.Children, runStyle{})
	case doctree.KindParagraph, doctree.KindTextBlock:
		p := b.doc.AddParagraph()
		b.prefix(p, depth, "")
		b.inlines(p, n.Children, runStyle{})
	case doctree.KindCodeBlock, doctree.KindFencedCode:
		for _, line := range strings.Split(strings.TrimRight(n.Literal, "\n"), "\n") {
			p := b.doc.AddParagraph()
			b.prefix(p, depth, "")
			runStyle{code: true}.apply(p.AddText(line))
		}
	case doctree.KindList:
		b.list(n, depth)
	case doctree.KindTable:
		for _, row := range n.Children {
			p := b.doc.AddParagraph()
			bold := row.Kind == doctree.KindTableHeader
			for i, cell := range row.Children {
				if i > 0 {
					p.AddText("").AddTab()
				}
				b.inlines(p, cell.Children, runStyle{bold: bold})
			}
		}
	case doctree.KindThematicBreak:
		b.doc.AddParagraph()
	case doctree.KindFrontMatter, doctree.KindHTMLBlock:
	default:
		b.blocks(n.Children, depth)
	}
}

func (b *docxBuilder) list(n doctree.Node, depth int) {
	for i, item := range n.Children {
		bullet := "•"
		if n.Ordered {
			bullet = strconv.Itoa(n.Start+i) + "."
		}
		children := item.Children
		if len(children) > 0 && (children[0].Kind == doctree.KindParagraph || children[0].Kind == doctree.KindTextBlock) {
			p := b.doc.AddParagraph()
			b.prefix(p, depth, bullet)
			b.inlines(p, children[0].Children, runStyle{})
			children = children[1:]
		} else {
			b.prefix(b.doc.AddParagraph(), depth, bullet)
		}
		b.blocks(children, depth+1)
	}
}

// prefix writes list indentation and an optional bullet.
func (b *docxBuilder) prefix(p *docx.Paragraph, depth int, bullet string) {
	indent := strings.Repeat("    ", depth)
	if bullet != "" {
		indent += bullet + " "
	}
	if indent != "" {
		p.AddText(indent)
	}
}

func (b *docxBuilder) inlines(p *docx.Paragraph, nodes []doctree.Node, style runStyle) {
	for _, n := range nodes {
		switch n.Kind {
		case doctree.KindText:
			text := n.Literal
			if n.SoftBreak || n.HardBreak {
				text += " "
			}
			style.apply(p.AddText(text))
		case doctree.KindCodeSpan:
			runStyle{bold: style.bold, italic: style.italic, code: true}.apply(p.AddText(n.Literal))
		case doctree.KindEmphasis:
			inner := style
			if n.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			b.inlines(p, n.Children, inner)
		case doctree.KindLink:
			p.AddLink(doctree.PlainText(n.Children), n.Destination)
		case doctree.KindAutoLink:
			p.AddLink(n.Literal, n.Destination)
		case doctree.KindImage:
			style.apply(p.AddText(doctree.PlainText(n.Children)))
		case doctree.KindWikiLink, doctree.KindEmbed:
			style.apply(p.AddText(n.Ref.Label()))
		case doctree.KindTag:
			style.apply(p.AddText("#" + n.Literal))
		case doctree.KindTaskCheckBox:
			box := "☐ "
			if n.Checked {
				box = "☑ "
			}
			p.AddText(box)
		case doctree.KindRawHTML:
		default:
			b.inlines(p, n.Children, style)
		}
	}
}
