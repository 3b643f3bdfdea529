package parser

import (
	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// htmlRenderer renders dialect nodes the way the editor's preview does:
// wikilinks as internal-link anchors, embeds as internal-embed spans (or
// images for image assets) and tags as tag anchors.
type htmlRenderer struct{}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindWikiLink, r.renderWikiLink)
	reg.Register(KindTag, r.renderTag)
}

func (r *htmlRenderer) renderWikiLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*WikiLink)
	ref := doctree.ParseRef(string(n.Raw))
	raw := util.EscapeHTML(n.Raw)

	switch {
	case n.Embed && IsAsset(ref.Target) && isImage(ref.Target):
		_, _ = w.WriteString(`<img src="`)
		_, _ = w.Write(util.EscapeHTML([]byte(ref.Target)))
		_, _ = w.WriteString(`" alt="`)
		_, _ = w.Write(util.EscapeHTML([]byte(ref.Label())))
		_, _ = w.WriteString(`" data-embed="`)
		_, _ = w.Write(raw)
		_, _ = w.WriteString(`">`)
	case n.Embed:
		_, _ = w.WriteString(`<span class="internal-embed" src="`)
		_, _ = w.Write(raw)
		_, _ = w.WriteString(`"></span>`)
	default:
		_, _ = w.WriteString(`<a class="internal-link" data-href="`)
		_, _ = w.Write(raw)
		_, _ = w.WriteString(`" href="`)
		_, _ = w.Write(util.EscapeHTML([]byte(ref.Target)))
		_, _ = w.WriteString(`">`)
		_, _ = w.Write(util.EscapeHTML([]byte(ref.Label())))
		_, _ = w.WriteString(`</a>`)
	}
	return ast.WalkSkipChildren, nil
}

func (r *htmlRenderer) renderTag(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Tag)
	name := util.EscapeHTML(n.Name)
	_, _ = w.WriteString(`<a href="#`)
	_, _ = w.Write(name)
	_, _ = w.WriteString(`" class="tag">#`)
	_, _ = w.Write(name)
	_, _ = w.WriteString(`</a>`)
	return ast.WalkSkipChildren, nil
}

func isImage(target string) bool {
	switch ext := lowerExt(target); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp", ".avif":
		return true
	}
	return false
}
