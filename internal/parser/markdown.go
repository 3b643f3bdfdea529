package parser

import (
	"bytes"
	"io"
	"path"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MarkdownParser handles Markdown files using goldmark plus the dialect
// extensions selected by its Syntax set.
type MarkdownParser struct {
	syntax doctree.Syntax
}

// NewMarkdownParser creates a parser for the given extension set.
func NewMarkdownParser(syntax doctree.Syntax) *MarkdownParser {
	return &MarkdownParser{syntax: syntax}
}

// Syntax returns the extension set the parser was built with.
func (p *MarkdownParser) Syntax() doctree.Syntax {
	return p.syntax
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(src, filename), nil
}

// ParseBytes parses an in-memory document. Markdown parsing cannot fail; any
// byte sequence yields a tree.
func (p *MarkdownParser) ParseBytes(src []byte, filename string) *doctree.DocTree {
	tree := &doctree.DocTree{
		Title: titleFromFilename(filename),
	}

	body := src
	if p.syntax.Has(doctree.FrontMatter) {
		raw, meta, rest := splitFrontMatter(src)
		if raw != "" {
			tree.Meta = meta
			tree.Children = append(tree.Children, doctree.Node{Kind: doctree.KindFrontMatter, Literal: raw})
			body = rest
		}
	}

	doc := NewEngine(p.syntax).Parser().Parse(text.NewReader(body))
	c := &converter{src: body}
	tree.Children = append(tree.Children, c.children(doc)...)
	return tree
}

// NewEngine builds a goldmark instance for the extension set. Wikilinks and
// tags render with the class names the editor uses in its own HTML.
func NewEngine(syntax doctree.Syntax) goldmark.Markdown {
	var exts []goldmark.Extender
	if syntax.Has(doctree.Tables) {
		exts = append(exts, extension.Table)
	}
	if syntax.Has(doctree.Strikethrough) {
		exts = append(exts, extension.Strikethrough)
	}
	if syntax.Has(doctree.TaskLists) {
		exts = append(exts, extension.TaskList)
	}
	exts = append(exts, &dialect{syntax: syntax})
	return goldmark.New(goldmark.WithExtensions(exts...))
}

type dialect struct {
	syntax doctree.Syntax
}

func (d *dialect) Extend(m goldmark.Markdown) {
	var inlines []util.PrioritizedValue
	if d.syntax.Has(doctree.WikiLinks) {
		// The standard link parser has priority 200.
		inlines = append(inlines, util.Prioritized(&wikiLinkParser{}, 199))
	}
	if d.syntax.Has(doctree.Tags) {
		inlines = append(inlines, util.Prioritized(&tagParser{}, 999))
	}
	if len(inlines) > 0 {
		m.Parser().AddOptions(gparser.WithInlineParsers(inlines...))
	}
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&htmlRenderer{}, 500)))
}

func titleFromFilename(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(strings.TrimSuffix(base, ".md"), ".markdown")
}

// converter turns a goldmark AST, which points into the source buffer, into a
// self-contained doctree.
type converter struct {
	src []byte
}

func (c *converter) children(n ast.Node) []doctree.Node {
	var out []doctree.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		converted, ok := c.node(child)
		if !ok {
			// Unknown node: keep whatever its children carry.
			out = appendInline(out, c.children(child)...)
			continue
		}
		out = appendInline(out, converted)
	}
	return out
}

// appendInline merges consecutive text runs so the tree does not reflect
// goldmark's internal segmenting.
func appendInline(out []doctree.Node, nodes ...doctree.Node) []doctree.Node {
	for _, n := range nodes {
		if n.Kind == doctree.KindText && len(out) > 0 {
			last := &out[len(out)-1]
			if last.Kind == doctree.KindText && !last.SoftBreak && !last.HardBreak {
				last.Literal += n.Literal
				last.SoftBreak = n.SoftBreak
				last.HardBreak = n.HardBreak
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

func (c *converter) node(n ast.Node) (doctree.Node, bool) {
	switch n := n.(type) {
	case *ast.Paragraph:
		return doctree.Node{Kind: doctree.KindParagraph, Children: c.children(n)}, true
	case *ast.TextBlock:
		return doctree.Node{Kind: doctree.KindTextBlock, Children: c.children(n)}, true
	case *ast.Heading:
		return doctree.Node{Kind: doctree.KindHeading, Level: n.Level, Children: c.children(n)}, true
	case *ast.ThematicBreak:
		return doctree.Node{Kind: doctree.KindThematicBreak}, true
	case *ast.CodeBlock:
		return doctree.Node{Kind: doctree.KindCodeBlock, Literal: c.lines(n)}, true
	case *ast.FencedCodeBlock:
		node := doctree.Node{Kind: doctree.KindFencedCode, Literal: c.lines(n)}
		if n.Info != nil {
			node.Info = string(n.Info.Segment.Value(c.src))
		}
		return node, true
	case *ast.Blockquote:
		return doctree.Node{Kind: doctree.KindBlockquote, Children: c.children(n)}, true
	case *ast.List:
		return doctree.Node{
			Kind:     doctree.KindList,
			Ordered:  n.IsOrdered(),
			Start:    n.Start,
			Marker:   n.Marker,
			Tight:    n.IsTight,
			Children: c.children(n),
		}, true
	case *ast.ListItem:
		return doctree.Node{Kind: doctree.KindListItem, Children: c.children(n)}, true
	case *ast.HTMLBlock:
		literal := c.lines(n)
		if n.HasClosure() {
			literal += string(n.ClosureLine.Value(c.src))
		}
		return doctree.Node{Kind: doctree.KindHTMLBlock, Literal: strings.TrimRight(literal, "\n")}, true
	case *ast.Text:
		return doctree.Node{
			Kind:      doctree.KindText,
			Literal:   string(n.Segment.Value(c.src)),
			SoftBreak: n.SoftLineBreak(),
			HardBreak: n.HardLineBreak(),
		}, true
	case *ast.String:
		return doctree.Node{Kind: doctree.KindText, Literal: string(n.Value)}, true
	case *ast.CodeSpan:
		return doctree.Node{Kind: doctree.KindCodeSpan, Literal: c.inlineText(n)}, true
	case *ast.Emphasis:
		return doctree.Node{Kind: doctree.KindEmphasis, Level: n.Level, Children: c.children(n)}, true
	case *ast.Link:
		return doctree.Node{
			Kind:        doctree.KindLink,
			Destination: string(n.Destination),
			Title:       string(n.Title),
			Children:    c.children(n),
		}, true
	case *ast.Image:
		return doctree.Node{
			Kind:        doctree.KindImage,
			Destination: string(n.Destination),
			Title:       string(n.Title),
			Children:    c.children(n),
		}, true
	case *ast.AutoLink:
		return doctree.Node{
			Kind:        doctree.KindAutoLink,
			Destination: string(n.URL(c.src)),
			Literal:     string(n.Label(c.src)),
		}, true
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(c.src))
		}
		return doctree.Node{Kind: doctree.KindRawHTML, Literal: buf.String()}, true
	case *east.Table:
		align := make([]doctree.Align, len(n.Alignments))
		for i, a := range n.Alignments {
			align[i] = convertAlign(a)
		}
		return doctree.Node{Kind: doctree.KindTable, Align: align, Children: c.children(n)}, true
	case *east.TableHeader:
		return doctree.Node{Kind: doctree.KindTableHeader, Children: c.children(n)}, true
	case *east.TableRow:
		return doctree.Node{Kind: doctree.KindTableRow, Children: c.children(n)}, true
	case *east.TableCell:
		return doctree.Node{
			Kind:     doctree.KindTableCell,
			Align:    []doctree.Align{convertAlign(n.Alignment)},
			Children: c.children(n),
		}, true
	case *east.Strikethrough:
		return doctree.Node{Kind: doctree.KindStrikethrough, Children: c.children(n)}, true
	case *east.TaskCheckBox:
		return doctree.Node{Kind: doctree.KindTaskCheckBox, Checked: n.IsChecked}, true
	case *WikiLink:
		kind := doctree.KindWikiLink
		if n.Embed {
			kind = doctree.KindEmbed
		}
		return doctree.Node{Kind: kind, Ref: doctree.ParseRef(string(n.Raw))}, true
	case *Tag:
		return doctree.Node{Kind: doctree.KindTag, Literal: string(n.Name)}, true
	}
	return doctree.Node{}, false
}

func (c *converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}

// inlineText joins the raw text of an inline container such as a code span.
func (c *converter) inlineText(n ast.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(c.src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return buf.String()
}

func convertAlign(a east.Alignment) doctree.Align {
	switch a {
	case east.AlignLeft:
		return doctree.AlignLeft
	case east.AlignCenter:
		return doctree.AlignCenter
	case east.AlignRight:
		return doctree.AlignRight
	}
	return doctree.AlignNone
}
