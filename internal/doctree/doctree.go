package doctree

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string         // Document title (from filename)
	Meta     map[string]any // Decoded front-matter metadata, nil when absent or undecodable
	Children []Node         // Top-level blocks, front matter first when present
}

// Kind identifies the block or inline type of a Node.
type Kind uint8

const (
	KindDocument Kind = iota
	KindFrontMatter
	KindParagraph
	KindTextBlock
	KindHeading
	KindThematicBreak
	KindCodeBlock
	KindFencedCode
	KindBlockquote
	KindList
	KindListItem
	KindHTMLBlock
	KindTable
	KindTableHeader
	KindTableRow
	KindTableCell
	KindText
	KindCodeSpan
	KindEmphasis
	KindStrikethrough
	KindLink
	KindImage
	KindAutoLink
	KindRawHTML
	KindTaskCheckBox
	KindWikiLink
	KindEmbed
	KindTag
)

var kindNames = [...]string{
	KindDocument:      "Document",
	KindFrontMatter:   "FrontMatter",
	KindParagraph:     "Paragraph",
	KindTextBlock:     "TextBlock",
	KindHeading:       "Heading",
	KindThematicBreak: "ThematicBreak",
	KindCodeBlock:     "CodeBlock",
	KindFencedCode:    "FencedCode",
	KindBlockquote:    "Blockquote",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindHTMLBlock:     "HTMLBlock",
	KindTable:         "Table",
	KindTableHeader:   "TableHeader",
	KindTableRow:      "TableRow",
	KindTableCell:     "TableCell",
	KindText:          "Text",
	KindCodeSpan:      "CodeSpan",
	KindEmphasis:      "Emphasis",
	KindStrikethrough: "Strikethrough",
	KindLink:          "Link",
	KindImage:         "Image",
	KindAutoLink:      "AutoLink",
	KindRawHTML:       "RawHTML",
	KindTaskCheckBox:  "TaskCheckBox",
	KindWikiLink:      "WikiLink",
	KindEmbed:         "Embed",
	KindTag:           "Tag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsBlock reports whether nodes of this kind live in block position.
func (k Kind) IsBlock() bool {
	return k <= KindTableCell
}

// Align is a table column alignment.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Node is one element of the syntax tree. Nodes are plain values: a
// transformation builds new nodes and new child slices instead of editing
// existing ones, so subtrees can be shared between trees safely.
type Node struct {
	Kind Kind

	// Literal holds raw content for leaf kinds: text runs, code, raw HTML,
	// the verbatim front-matter block, tag names.
	Literal string

	// Level is the heading level (1-6) or the emphasis level (1-2).
	Level int

	// List attributes.
	Ordered bool
	Start   int
	Marker  byte
	Tight   bool

	// Checked is the state of a task list checkbox.
	Checked bool

	// Info is the info string of a fenced code block.
	Info string

	// Destination and Title for links, images and autolinks.
	Destination string
	Title       string

	// Ref is set for wikilinks and embeds.
	Ref Ref

	// Align holds one entry per column on tables, a single entry on cells.
	Align []Align

	// Line break following a text run.
	SoftBreak bool
	HardBreak bool

	Children []Node
}

// WithChildren returns a copy of n carrying the given children.
func (n Node) WithChildren(children []Node) Node {
	n.Children = children
	return n
}

// Text creates a text run.
func Text(s string) Node {
	return Node{Kind: KindText, Literal: s}
}

// Paragraph creates a paragraph holding the given inline nodes.
func Paragraph(inlines ...Node) Node {
	return Node{Kind: KindParagraph, Children: inlines}
}

// Embed creates an embed reference for the raw wikilink body.
func Embed(raw string) Node {
	return Node{Kind: KindEmbed, Ref: ParseRef(raw)}
}
