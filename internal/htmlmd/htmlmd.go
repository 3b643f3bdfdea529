// Package htmlmd converts rendered HTML back into a doctree. It understands
// the markup goldmark produces plus the editor's preview classes for
// wikilinks, embeds and tags.
package htmlmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"golang.org/x/net/html"
)

// Convert parses an HTML document or fragment. The <title> element, when
// present, overrides title.
func Convert(r io.Reader, title string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{Title: title}
	if t := findTitle(doc); t != "" {
		tree.Title = t
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	tree.Children = blocks(root, false)
	return tree, nil
}

// blocks converts the children of n in block context. Loose inline content
// between block elements becomes a paragraph, or a text block in tight lists.
func blocks(n *html.Node, tight bool) []doctree.Node {
	var out, run []doctree.Node
	flush := func() {
		if trimmed := doctree.TrimInlines(run); len(trimmed) > 0 {
			kind := doctree.KindParagraph
			if tight {
				kind = doctree.KindTextBlock
			}
			out = append(out, doctree.Node{Kind: kind, Children: trimmed})
		}
		run = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && skipped(c.Data) {
			continue
		}
		if c.Type != html.ElementNode || !isBlock(c) {
			run = inline(run, c)
			continue
		}
		flush()
		out = append(out, block(c, tight)...)
	}
	flush()
	return out
}

func block(n *html.Node, tight bool) []doctree.Node {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return []doctree.Node{{
			Kind:     doctree.KindHeading,
			Level:    int(n.Data[1] - '0'),
			Children: doctree.TrimInlines(inlines(n)),
		}}
	case "p":
		children := doctree.TrimInlines(inlines(n))
		if len(children) == 0 {
			return nil
		}
		kind := doctree.KindParagraph
		if tight {
			kind = doctree.KindTextBlock
		}
		return []doctree.Node{{Kind: kind, Children: children}}
	case "hr":
		return []doctree.Node{{Kind: doctree.KindThematicBreak}}
	case "pre":
		return []doctree.Node{codeBlock(n)}
	case "blockquote":
		return []doctree.Node{{Kind: doctree.KindBlockquote, Children: blocks(n, false)}}
	case "ul", "ol":
		return []doctree.Node{list(n)}
	case "li":
		return []doctree.Node{{Kind: doctree.KindListItem, Children: blocks(n, tight)}}
	case "table":
		if t, ok := table(n); ok {
			return []doctree.Node{t}
		}
		return nil
	}
	// Containers such as div or section contribute their content.
	return blocks(n, tight)
}

func list(n *html.Node) doctree.Node {
	l := doctree.Node{
		Kind:    doctree.KindList,
		Ordered: n.Data == "ol",
		Marker:  '-',
		Tight:   true,
	}
	if l.Ordered {
		l.Marker = '.'
		l.Start = 1
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			l.Start = start
		}
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == html.ElementNode && li.Data == "li" && hasChildElement(li, "p") {
			l.Tight = false
		}
	}
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type == html.ElementNode && li.Data == "li" {
			l.Children = append(l.Children, doctree.Node{Kind: doctree.KindListItem, Children: blocks(li, l.Tight)})
		}
	}
	return l
}

func codeBlock(pre *html.Node) doctree.Node {
	node := doctree.Node{Kind: doctree.KindFencedCode}
	source := pre
	if code := firstChildElement(pre, "code"); code != nil {
		source = code
		for _, class := range strings.Fields(attr(code, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				node.Info = lang
			}
		}
	}
	node.Literal = rawText(source)
	if node.Literal != "" && !strings.HasSuffix(node.Literal, "\n") {
		node.Literal += "\n"
	}
	return node
}

func table(n *html.Node) (doctree.Node, bool) {
	var rows []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "tr":
				rows = append(rows, c)
			case "thead", "tbody", "tfoot":
				collect(c)
			}
		}
	}
	collect(n)
	if len(rows) == 0 {
		return doctree.Node{}, false
	}

	t := doctree.Node{Kind: doctree.KindTable}
	for i, tr := range rows {
		row := doctree.Node{Kind: doctree.KindTableRow}
		if i == 0 {
			row.Kind = doctree.KindTableHeader
		}
		for cell := tr.FirstChild; cell != nil; cell = cell.NextSibling {
			if cell.Type != html.ElementNode || (cell.Data != "th" && cell.Data != "td") {
				continue
			}
			align := cellAlign(cell)
			if i == 0 {
				t.Align = append(t.Align, align)
			}
			row.Children = append(row.Children, doctree.Node{
				Kind:     doctree.KindTableCell,
				Align:    []doctree.Align{align},
				Children: doctree.TrimInlines(inlines(cell)),
			})
		}
		t.Children = append(t.Children, row)
	}
	return t, true
}

func cellAlign(cell *html.Node) doctree.Align {
	value := attr(cell, "align")
	if style := attr(cell, "style"); value == "" && style != "" {
		for _, decl := range strings.Split(style, ";") {
			prop, v, ok := strings.Cut(decl, ":")
			if ok && strings.TrimSpace(prop) == "text-align" {
				value = strings.TrimSpace(v)
			}
		}
	}
	switch value {
	case "left":
		return doctree.AlignLeft
	case "center":
		return doctree.AlignCenter
	case "right":
		return doctree.AlignRight
	}
	return doctree.AlignNone
}

// inlines converts the children of n in inline context.
func inlines(n *html.Node) []doctree.Node {
	var out []doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = inline(out, c)
	}
	return out
}

func inline(out []doctree.Node, n *html.Node) []doctree.Node {
	switch n.Type {
	case html.TextNode:
		return appendText(out, collapseSpace(n.Data))
	case html.ElementNode:
	default:
		return out
	}
	if skipped(n.Data) {
		return out
	}

	switch n.Data {
	case "em", "i":
		return append(out, doctree.Node{Kind: doctree.KindEmphasis, Level: 1, Children: inlines(n)})
	case "strong", "b":
		return append(out, doctree.Node{Kind: doctree.KindEmphasis, Level: 2, Children: inlines(n)})
	case "del", "s", "strike":
		return append(out, doctree.Node{Kind: doctree.KindStrikethrough, Children: inlines(n)})
	case "code":
		return append(out, doctree.Node{Kind: doctree.KindCodeSpan, Literal: rawText(n)})
	case "br":
		return hardBreak(out)
	case "a":
		return append(out, anchor(n))
	case "img":
		if raw := attr(n, "data-embed"); raw != "" {
			return append(out, doctree.Embed(raw))
		}
		img := doctree.Node{Kind: doctree.KindImage, Destination: attr(n, "src"), Title: attr(n, "title")}
		if alt := attr(n, "alt"); alt != "" {
			img.Children = []doctree.Node{doctree.Text(alt)}
		}
		return append(out, img)
	case "span":
		if hasClass(n, "internal-embed") {
			return append(out, doctree.Embed(attr(n, "src")))
		}
	case "input":
		if attr(n, "type") == "checkbox" {
			return append(out, doctree.Node{Kind: doctree.KindTaskCheckBox, Checked: hasAttr(n, "checked")})
		}
		return out
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = inline(out, c)
	}
	return out
}

func anchor(n *html.Node) doctree.Node {
	text := strings.TrimSpace(textContent(n))
	switch {
	case hasClass(n, "internal-link"):
		raw := attr(n, "data-href")
		if raw == "" {
			raw = attr(n, "href")
		}
		if text != "" && text != raw {
			if ref := doctree.ParseRef(raw); ref.Alias == "" && text != ref.Label() {
				raw += "|" + text
			}
		}
		return doctree.Node{Kind: doctree.KindWikiLink, Ref: doctree.ParseRef(raw)}
	case hasClass(n, "tag") && strings.HasPrefix(text, "#"):
		return doctree.Node{Kind: doctree.KindTag, Literal: strings.TrimPrefix(text, "#")}
	}

	href := attr(n, "href")
	if text == href || text == strings.TrimPrefix(href, "mailto:") {
		if strings.Contains(href, ":") {
			return doctree.Node{Kind: doctree.KindAutoLink, Destination: href, Literal: text}
		}
	}
	return doctree.Node{
		Kind:        doctree.KindLink,
		Destination: href,
		Title:       attr(n, "title"),
		Children:    doctree.TrimInlines(inlines(n)),
	}
}

// appendText adds collapsed text, merging with a preceding text run.
func appendText(out []doctree.Node, s string) []doctree.Node {
	if s == "" {
		return out
	}
	if len(out) > 0 {
		last := &out[len(out)-1]
		switch {
		case last.Kind == doctree.KindTaskCheckBox:
			s = strings.TrimLeft(s, " ")
		case last.Kind == doctree.KindText && last.HardBreak:
			s = strings.TrimLeft(s, " ")
		case last.Kind == doctree.KindText:
			if strings.HasSuffix(last.Literal, " ") {
				s = strings.TrimLeft(s, " ")
			}
			last.Literal += s
			return out
		}
		if s == "" {
			return out
		}
	}
	return append(out, doctree.Text(s))
}

func hardBreak(out []doctree.Node) []doctree.Node {
	if len(out) > 0 {
		if last := &out[len(out)-1]; last.Kind == doctree.KindText {
			last.Literal = strings.TrimRight(last.Literal, " ")
			last.HardBreak = true
			return out
		}
	}
	return append(out, doctree.Node{Kind: doctree.KindText, HardBreak: true})
}

func collapseSpace(s string) string {
	var buf strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			buf.WriteByte(' ')
			space = false
		}
		buf.WriteRune(r)
	}
	if space {
		buf.WriteByte(' ')
	}
	return buf.String()
}
