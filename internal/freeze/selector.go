package freeze

import (
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/gosimple/slug"
)

// selectFragment narrows a document body to the part a reference's fragment
// names: "^id" selects the block carrying that block id, anything else the
// section under the matching heading. ok is false when nothing matches.
func selectFragment(blocks []doctree.Node, ref doctree.Ref) ([]doctree.Node, bool) {
	if ref.Fragment == "" {
		return blocks, true
	}
	if id, isBlock := ref.BlockSelector(); isBlock {
		return selectBlock(blocks, id)
	}
	return selectSection(blocks, ref.Fragment)
}

// selectSection returns the heading whose text matches fragment and every
// block up to the next heading of the same or a higher level. Nested
// fragments (H1#H2) match on their last component.
func selectSection(blocks []doctree.Node, fragment string) ([]doctree.Node, bool) {
	parts := strings.Split(fragment, "#")
	want := slug.Make(parts[len(parts)-1])
	if want == "" {
		return nil, false
	}
	for i, b := range blocks {
		if b.Kind != doctree.KindHeading || slug.Make(doctree.PlainText(b.Children)) != want {
			continue
		}
		end := len(blocks)
		for j := i + 1; j < len(blocks); j++ {
			if blocks[j].Kind == doctree.KindHeading && blocks[j].Level <= b.Level {
				end = j
				break
			}
		}
		return blocks[i:end], true
	}
	return nil, false
}

// selectBlock finds the block ending in "^id". A paragraph holding only the
// marker identifies the block before it, as used after lists and tables.
func selectBlock(blocks []doctree.Node, id string) ([]doctree.Node, bool) {
	marker := "^" + id
	for i, b := range blocks {
		switch b.Kind {
		case doctree.KindParagraph, doctree.KindTextBlock:
			if strings.TrimSpace(doctree.PlainText(b.Children)) == marker {
				if i == 0 {
					return nil, false
				}
				return blocks[i-1 : i], true
			}
			if stripped, ok := stripBlockID(b, marker); ok {
				return []doctree.Node{stripped}, true
			}
		case doctree.KindList:
			for _, item := range b.Children {
				if found, ok := selectBlock(item.Children, id); ok {
					return []doctree.Node{b.WithChildren([]doctree.Node{item.WithChildren(found)})}, true
				}
			}
		case doctree.KindBlockquote:
			if found, ok := selectBlock(b.Children, id); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// stripBlockID removes a trailing " ^id" from a paragraph's last text run.
func stripBlockID(p doctree.Node, marker string) (doctree.Node, bool) {
	if len(p.Children) == 0 {
		return p, false
	}
	last := p.Children[len(p.Children)-1]
	if last.Kind != doctree.KindText {
		return p, false
	}
	text := strings.TrimRight(last.Literal, " \t")
	if text == marker && len(p.Children) > 1 {
		// Marker on its own line at the end of the paragraph.
		children := append([]doctree.Node(nil), p.Children[:len(p.Children)-1]...)
		prev := &children[len(children)-1]
		prev.SoftBreak, prev.HardBreak = false, false
		return p.WithChildren(children), true
	}
	if !strings.HasSuffix(text, " "+marker) {
		return p, false
	}
	last.Literal = strings.TrimRight(strings.TrimSuffix(text, marker), " \t")
	children := append(append([]doctree.Node(nil), p.Children[:len(p.Children)-1]...), last)
	if last.Literal == "" && !last.SoftBreak && !last.HardBreak {
		children = children[:len(children)-1]
	}
	return p.WithChildren(children), true
}
