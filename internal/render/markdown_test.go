package render

import (
	"strings"
	"testing"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/dgallion1/docfreeze/internal/parser"
)

func roundTrip(input string) string {
	tree := parser.NewMarkdownParser(doctree.Dialect).ParseBytes([]byte(input), "x.md")
	return NewMarkdown().Render(tree)
}

func TestMarkdown_RoundTripExact(t *testing.T) {
	inputs := []string{
		"# Title\n\nA paragraph with *emphasis*, **strong** and `code`.\n",
		"---\ntitle: x\n---\n\nBody.\n",
		"- one\n- two\n  - nested\n- three\n",
		"1. first\n2. second\n",
		"> quoted\n> text\n",
		"```go\nfunc main() {}\n```\n",
		"| a | b |\n| :-- | --: |\n| 1 | 2 |\n",
		"- [x] done\n- [ ] todo\n",
		"See [[Note#Part|alias]], ![[Embed]] and #tag/sub.\n",
		"~~struck~~ text\n",
		"[link](https://example.com \"Title\") and <https://auto.example>\n",
		"[link](https://example.com \"say \\\"hi\\\"\") here\n",
		"***\n",
	}
	for _, input := range inputs {
		if got := roundTrip(input); got != input {
			t.Errorf("round trip changed input\ninput: %q\ngot:   %q", input, got)
		}
	}
}

func TestMarkdown_RoundTripStable(t *testing.T) {
	input := `Setext Heading
==============

* star list
* second

+ plus list

Code follows.

    indented code

Line one\
hard break and soft
break.

<div>
raw html
</div>

1) paren list
`
	once := roundTrip(input)
	twice := roundTrip(once)
	if once != twice {
		t.Errorf("serialization is not stable:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
	if !strings.HasPrefix(once, "# Setext Heading\n") {
		t.Errorf("expected ATX heading, got:\n%s", once)
	}
	if !strings.Contains(once, "hard break and soft\nbreak.") {
		t.Errorf("soft break lost:\n%s", once)
	}
	if !strings.Contains(once, "Line one\\\nhard") {
		t.Errorf("hard break lost:\n%s", once)
	}
}

func TestMarkdown_AdjacentListsStaySeparate(t *testing.T) {
	tree := &doctree.DocTree{Children: []doctree.Node{
		{Kind: doctree.KindList, Marker: '-', Tight: true, Children: []doctree.Node{
			{Kind: doctree.KindListItem, Children: []doctree.Node{{Kind: doctree.KindTextBlock, Children: []doctree.Node{doctree.Text("a")}}}},
		}},
		{Kind: doctree.KindList, Marker: '-', Tight: true, Children: []doctree.Node{
			{Kind: doctree.KindListItem, Children: []doctree.Node{{Kind: doctree.KindTextBlock, Children: []doctree.Node{doctree.Text("b")}}}},
		}},
	}}
	got := NewMarkdown().Render(tree)
	if got != "- a\n\n* b\n" {
		t.Errorf("unexpected output %q", got)
	}
	reparsed := parser.NewMarkdownParser(doctree.Dialect).ParseBytes([]byte(got), "x.md")
	if n := doctree.Count(reparsed.Children, doctree.KindList); n != 2 {
		t.Errorf("expected 2 lists after reparse, got %d", n)
	}
}

func TestMarkdown_TableCellPipesEscaped(t *testing.T) {
	cell := func(inlines ...doctree.Node) doctree.Node {
		return doctree.Node{Kind: doctree.KindTableCell, Children: inlines}
	}
	tree := &doctree.DocTree{Children: []doctree.Node{
		{Kind: doctree.KindTable, Align: []doctree.Align{doctree.AlignNone, doctree.AlignNone}, Children: []doctree.Node{
			{Kind: doctree.KindTableHeader, Children: []doctree.Node{cell(doctree.Text("a")), cell(doctree.Text("b"))}},
			{Kind: doctree.KindTableRow, Children: []doctree.Node{cell(doctree.Text("one | two")), cell(doctree.Text(`x \| y`))}},
		}},
	}}
	got := NewMarkdown().Render(tree)
	want := "| a | b |\n| --- | --- |\n| one \\| two | x \\| y |\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDestination(t *testing.T) {
	tests := []struct {
		dest, title, want string
	}{
		{"u", "", "u"},
		{"a b", "", "<a b>"},
		{"u", `say "hi"`, `u "say \"hi\""`},
		{"u", `say \"hi\"`, `u "say \"hi\""`},
	}
	for _, tt := range tests {
		if got := destination(tt.dest, tt.title); got != tt.want {
			t.Errorf("destination(%q, %q) = %q, want %q", tt.dest, tt.title, got, tt.want)
		}
	}
}

func TestMarkdown_FenceLongerThanContent(t *testing.T) {
	n := doctree.Node{Kind: doctree.KindFencedCode, Info: "md", Literal: "```\ninner\n```\n"}
	got := NewMarkdown().RenderNodes([]doctree.Node{n})
	if got != "````md\n```\ninner\n```\n````\n" {
		t.Errorf("unexpected fence %q", got)
	}
}

func TestMarkdown_CodeSpanWithBackticks(t *testing.T) {
	p := doctree.Paragraph(doctree.Node{Kind: doctree.KindCodeSpan, Literal: "a`b"})
	if got := NewMarkdown().RenderNodes([]doctree.Node{p}); got != "``a`b``\n" {
		t.Errorf("unexpected code span %q", got)
	}
}

func TestMarkdown_SyntaxControlsDialect(t *testing.T) {
	tree := &doctree.DocTree{Children: []doctree.Node{
		{Kind: doctree.KindFrontMatter, Literal: "---\na: 1\n---"},
		doctree.Paragraph(
			doctree.Text("see "),
			doctree.Node{Kind: doctree.KindWikiLink, Ref: doctree.ParseRef("Note|shown")},
		),
	}}

	full := NewMarkdown().Render(tree)
	if full != "---\na: 1\n---\n\nsee [[Note|shown]]\n" {
		t.Errorf("unexpected dialect output %q", full)
	}

	plain := NewMarkdown(WithSyntax(doctree.Tables)).Render(tree)
	if plain != "see shown\n" {
		t.Errorf("unexpected commonmark output %q", plain)
	}
}

func TestMarkdown_VerbatimVersusEscaping(t *testing.T) {
	tree := &doctree.DocTree{Children: []doctree.Node{
		doctree.Paragraph(doctree.Text("a [[b]] #c *d*")),
	}}

	verbatim := NewMarkdown().Render(tree)
	if verbatim != "a [[b]] #c *d*\n" {
		t.Errorf("verbatim text was altered: %q", verbatim)
	}

	escaped := NewMarkdown(WithTextEmitter(EscapingText)).Render(tree)
	if escaped != `a \[\[b\]\] \#c \*d\*`+"\n" {
		t.Errorf("unexpected escaped text: %q", escaped)
	}
}

func TestEscapingText(t *testing.T) {
	tests := []struct {
		in        string
		lineStart bool
		want      string
	}{
		{"plain", true, "plain"},
		{"- not a list", true, `\- not a list`},
		{"- mid line", false, "- mid line"},
		{"12. not ordered", true, `12\. not ordered`},
		{"3) nor this", true, `3\) nor this`},
		{"2024 was a year", true, "2024 was a year"},
		{"see ![x]", false, `see \!\[x\]`},
		{"wow!", false, "wow!"},
		{"a\n+ b", false, "a\n\\+ b"},
		{"<tag> | pipe ~ tilde _u_", false, `\<tag\> \| pipe \~ tilde \_u\_`},
	}
	for _, tt := range tests {
		if got := EscapingText.Text(tt.in, tt.lineStart); got != tt.want {
			t.Errorf("Text(%q, %v) = %q, want %q", tt.in, tt.lineStart, got, tt.want)
		}
	}
}

func TestHTML(t *testing.T) {
	tree := parser.NewMarkdownParser(doctree.Dialect).ParseBytes(
		[]byte("---\nsecret: yes\n---\n\n# Head\n\nSee [[Note]] #tag\n"), "x.md")

	html, err := HTML(tree, doctree.Dialect)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(html)
	if strings.Contains(out, "secret") {
		t.Errorf("front matter leaked into HTML:\n%s", out)
	}
	for _, want := range []string{"<h1>Head</h1>", `class="internal-link"`, `class="tag"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}
