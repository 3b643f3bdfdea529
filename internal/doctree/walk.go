package doctree

import "strings"

// Walk visits nodes depth-first, pre-order. Returning false from fn skips the
// node's children.
func Walk(nodes []Node, fn func(n Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(n.Children, fn)
		}
	}
}

// Count returns the number of nodes of the given kind.
func Count(nodes []Node, kind Kind) int {
	count := 0
	Walk(nodes, func(n Node) bool {
		if n.Kind == kind {
			count++
		}
		return true
	})
	return count
}

// Collect returns every node of the given kind in document order.
func Collect(nodes []Node, kind Kind) []Node {
	var out []Node
	Walk(nodes, func(n Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

// PlainText flattens nodes to their visible text.
func PlainText(nodes []Node) string {
	var buf strings.Builder
	writePlain(&buf, nodes)
	return strings.TrimSpace(buf.String())
}

func writePlain(buf *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Kind {
		case KindText, KindCodeSpan, KindCodeBlock, KindFencedCode:
			buf.WriteString(n.Literal)
		case KindTag:
			buf.WriteString("#" + n.Literal)
		case KindWikiLink:
			buf.WriteString(n.Ref.Label())
		case KindFrontMatter, KindHTMLBlock, KindRawHTML, KindEmbed:
			continue
		default:
			writePlain(buf, n.Children)
		}
		if n.SoftBreak || n.HardBreak {
			buf.WriteByte('\n')
		}
		if n.Kind.IsBlock() && n.Kind != KindTableCell {
			buf.WriteByte('\n')
		} else if n.Kind == KindTableCell {
			buf.WriteByte(' ')
		}
	}
}

// Body returns the blocks of a tree without its front matter.
func (t *DocTree) Body() []Node {
	var body []Node
	for _, n := range t.Children {
		if n.Kind == KindFrontMatter {
			continue
		}
		body = append(body, n)
	}
	return body
}

// TrimInlines drops blank text runs at either end of an inline sequence,
// trims the outer whitespace of the remaining ends and clears the break
// after the last run. The input slice is not modified.
func TrimInlines(nodes []Node) []Node {
	start, end := 0, len(nodes)
	for start < end && blankText(nodes[start]) {
		start++
	}
	for end > start && blankText(nodes[end-1]) {
		end--
	}
	if start == end {
		return nil
	}
	out := append([]Node(nil), nodes[start:end]...)
	if first := &out[0]; first.Kind == KindText {
		first.Literal = strings.TrimLeft(first.Literal, " \t")
	}
	if last := &out[len(out)-1]; last.Kind == KindText {
		last.Literal = strings.TrimRight(last.Literal, " \t")
		last.SoftBreak, last.HardBreak = false, false
	}
	return out
}

func blankText(n Node) bool {
	return n.Kind == KindText && strings.TrimSpace(n.Literal) == ""
}
