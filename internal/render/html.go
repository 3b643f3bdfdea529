package render

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/dgallion1/docfreeze/internal/parser"
)

// HTML renders a doctree to HTML through goldmark, with dialect nodes in the
// editor's preview markup. Front matter is not rendered.
func HTML(tree *doctree.DocTree, syntax doctree.Syntax) ([]byte, error) {
	md := NewMarkdown(WithSyntax(syntax &^ doctree.FrontMatter)).Render(tree)

	var buf bytes.Buffer
	if err := parser.NewEngine(syntax).Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}
