package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
)

// Markdown serializes a doctree back to markdown text. It is the inverse of
// parser.MarkdownParser for the same Syntax set.
type Markdown struct {
	syntax doctree.Syntax
	text   TextEmitter
}

// Option configures a Markdown serializer.
type Option func(*Markdown)

// WithSyntax sets the extension set. Front matter is dropped and wikilinks
// fall back to their label when the matching extension is disabled.
func WithSyntax(s doctree.Syntax) Option {
	return func(m *Markdown) { m.syntax = s }
}

// WithTextEmitter replaces the text emission strategy.
func WithTextEmitter(t TextEmitter) Option {
	return func(m *Markdown) { m.text = t }
}

// NewMarkdown returns a serializer for the full dialect that writes text runs
// verbatim.
func NewMarkdown(opts ...Option) *Markdown {
	m := &Markdown{
		syntax: doctree.Dialect,
		text:   VerbatimText,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render serializes a whole document.
func (m *Markdown) Render(tree *doctree.DocTree) string {
	return m.RenderNodes(tree.Children)
}

// RenderNodes serializes a block sequence. The result ends with a single
// newline unless it is empty.
func (m *Markdown) RenderNodes(nodes []doctree.Node) string {
	out := m.blocks(nodes, false)
	if out == "" {
		return ""
	}
	return out + "\n"
}

func (m *Markdown) blocks(nodes []doctree.Node, tight bool) string {
	sep := "\n\n"
	if tight {
		sep = "\n"
	}
	var parts []string
	var prev *doctree.Node
	for i := range nodes {
		n := nodes[i]
		if n.Kind == doctree.KindList && prev != nil && prev.Kind == doctree.KindList && prev.Ordered == n.Ordered && prev.Marker == n.Marker {
			// Adjacent lists with the same marker would merge into one.
			n.Marker = alternateMarker(n)
		}
		s := m.block(n)
		if s == "" {
			continue
		}
		parts = append(parts, s)
		prev = &n
	}
	return strings.Join(parts, sep)
}

func alternateMarker(n doctree.Node) byte {
	if n.Ordered {
		if n.Marker == ')' {
			return '.'
		}
		return ')'
	}
	if n.Marker == '*' {
		return '-'
	}
	return '*'
}

func (m *Markdown) block(n doctree.Node) string {
	switch n.Kind {
	case doctree.KindFrontMatter:
		if !m.syntax.Has(doctree.FrontMatter) {
			return ""
		}
		return n.Literal
	case doctree.KindParagraph, doctree.KindTextBlock:
		return m.inlines(n.Children, true)
	case doctree.KindHeading:
		level := min(max(n.Level, 1), 6)
		text := strings.ReplaceAll(m.inlines(n.Children, false), "\n", " ")
		return strings.TrimRight(strings.Repeat("#", level)+" "+text, " ")
	case doctree.KindThematicBreak:
		// Not "---": at document start it would read as front matter.
		return "***"
	case doctree.KindCodeBlock:
		return indentLines(strings.TrimRight(n.Literal, "\n"), "    ", "    ")
	case doctree.KindFencedCode:
		return fencedCode(n)
	case doctree.KindBlockquote:
		return quoteLines(m.blocks(n.Children, false))
	case doctree.KindList:
		return m.list(n)
	case doctree.KindListItem:
		return m.blocks(n.Children, false)
	case doctree.KindHTMLBlock:
		return n.Literal
	case doctree.KindTable:
		return m.table(n)
	case doctree.KindTableHeader, doctree.KindTableRow:
		return m.row(n, len(n.Children))
	case doctree.KindDocument:
		return m.blocks(n.Children, false)
	}
	return m.inlines([]doctree.Node{n}, true)
}

func (m *Markdown) list(n doctree.Node) string {
	marker := n.Marker
	if marker == 0 {
		marker = '-'
		if n.Ordered {
			marker = '.'
		}
	}
	start := n.Start
	if n.Ordered && start == 0 && len(n.Children) > 0 {
		start = 1
	}

	sep := "\n\n"
	if n.Tight {
		sep = "\n"
	}
	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		bullet := string(marker)
		if n.Ordered {
			bullet = fmt.Sprintf("%d%c", start+i, marker)
		}
		content := m.blocks(item.Children, n.Tight)
		if content == "" {
			items = append(items, bullet)
			continue
		}
		pad := strings.Repeat(" ", len(bullet)+1)
		items = append(items, indentLines(content, bullet+" ", pad))
	}
	return strings.Join(items, sep)
}

func (m *Markdown) table(n doctree.Node) string {
	cols := len(n.Align)
	for _, row := range n.Children {
		cols = max(cols, len(row.Children))
	}
	if cols == 0 || len(n.Children) == 0 {
		return ""
	}

	var lines []string
	for i, row := range n.Children {
		lines = append(lines, m.row(row, cols))
		if i == 0 {
			lines = append(lines, delimiterRow(n.Align, cols))
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Markdown) row(row doctree.Node, cols int) string {
	var buf strings.Builder
	buf.WriteString("|")
	for i := 0; i < cols; i++ {
		cell := ""
		if i < len(row.Children) {
			cell = escapeBare(strings.ReplaceAll(m.inlines(row.Children[i].Children, false), "\n", " "), '|')
		}
		buf.WriteString(" " + cell + " |")
	}
	return buf.String()
}

// escapeBare backslash-escapes every c that does not already carry one. In
// table cells this keeps spliced content from adding columns.
func escapeBare(s string, c byte) string {
	if strings.IndexByte(s, c) < 0 {
		return s
	}
	var buf strings.Builder
	buf.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == c && (i == 0 || s[i-1] != '\\') {
			buf.WriteByte('\\')
		}
		buf.WriteByte(s[i])
	}
	return buf.String()
}

func delimiterRow(align []doctree.Align, cols int) string {
	var buf strings.Builder
	buf.WriteString("|")
	for i := 0; i < cols; i++ {
		a := doctree.AlignNone
		if i < len(align) {
			a = align[i]
		}
		switch a {
		case doctree.AlignLeft:
			buf.WriteString(" :-- |")
		case doctree.AlignCenter:
			buf.WriteString(" :-: |")
		case doctree.AlignRight:
			buf.WriteString(" --: |")
		default:
			buf.WriteString(" --- |")
		}
	}
	return buf.String()
}

func (m *Markdown) inlines(nodes []doctree.Node, lineStart bool) string {
	var buf strings.Builder
	for _, n := range nodes {
		atStart := lineStart && buf.Len() == 0 || strings.HasSuffix(buf.String(), "\n")
		buf.WriteString(m.inline(n, atStart))
	}
	return buf.String()
}

func (m *Markdown) inline(n doctree.Node, lineStart bool) string {
	switch n.Kind {
	case doctree.KindText:
		s := m.text.Text(n.Literal, lineStart)
		switch {
		case n.HardBreak:
			s += "\\\n"
		case n.SoftBreak:
			s += "\n"
		}
		return s
	case doctree.KindCodeSpan:
		return codeSpan(n.Literal)
	case doctree.KindEmphasis:
		marker := strings.Repeat("*", min(max(n.Level, 1), 2))
		return marker + m.inlines(n.Children, false) + marker
	case doctree.KindStrikethrough:
		return "~~" + m.inlines(n.Children, false) + "~~"
	case doctree.KindLink:
		return "[" + m.inlines(n.Children, false) + "](" + destination(n.Destination, n.Title) + ")"
	case doctree.KindImage:
		return "![" + m.inlines(n.Children, false) + "](" + destination(n.Destination, n.Title) + ")"
	case doctree.KindAutoLink:
		label := n.Literal
		if label == "" {
			label = n.Destination
		}
		return "<" + label + ">"
	case doctree.KindRawHTML:
		return n.Literal
	case doctree.KindTaskCheckBox:
		if n.Checked {
			return "[x] "
		}
		return "[ ] "
	case doctree.KindWikiLink:
		if !m.syntax.Has(doctree.WikiLinks) {
			return m.text.Text(n.Ref.Label(), lineStart)
		}
		return "[[" + n.Ref.Raw + "]]"
	case doctree.KindEmbed:
		return "![[" + n.Ref.Raw + "]]"
	case doctree.KindTag:
		return "#" + n.Literal
	}
	if n.Kind.IsBlock() {
		return m.block(n)
	}
	return m.inlines(n.Children, lineStart)
}

func fencedCode(n doctree.Node) string {
	fenceChar := "`"
	if strings.Contains(n.Info, "`") {
		fenceChar = "~"
	}
	fence := strings.Repeat(fenceChar, max(3, longestRun(n.Literal, fenceChar[0])+1))
	body := strings.TrimSuffix(n.Literal, "\n")
	if body == "" && n.Literal == "" {
		return fence + n.Info + "\n" + fence
	}
	return fence + n.Info + "\n" + body + "\n" + fence
}

func codeSpan(literal string) string {
	ticks := strings.Repeat("`", longestRun(literal, '`')+1)
	if strings.HasPrefix(literal, "`") || strings.HasSuffix(literal, "`") ||
		(strings.HasPrefix(literal, " ") && strings.HasSuffix(literal, " ") && strings.TrimSpace(literal) != "") {
		literal = " " + literal + " "
	}
	return ticks + literal + ticks
}

func destination(dest, title string) string {
	if dest == "" || strings.ContainsAny(dest, " ()<>") {
		dest = "<" + dest + ">"
	}
	if title == "" {
		return dest
	}
	// Titles keep their source escapes.
	return dest + ` "` + escapeBare(title, '"') + `"`
}

func longestRun(s string, c byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

// indentLines prefixes the first line with first and every following
// non-empty line with rest.
func indentLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = first + line
		case line != "":
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func quoteLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}
