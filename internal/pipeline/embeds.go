package pipeline

import (
	"context"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/dgallion1/docfreeze/internal/freeze"
	"github.com/dgallion1/docfreeze/internal/parser"
)

// EmbedInfo describes one embed written directly in a document.
type EmbedInfo struct {
	Raw      string `json:"raw"`
	Target   string `json:"target"`
	Fragment string `json:"fragment,omitempty"`
	Resolved string `json:"resolved,omitempty"`
	Found    bool   `json:"found"`
	Asset    bool   `json:"asset"`
}

// Embeds lists the embeds of the document at docPath in document order,
// with the file each one resolves to. Embedded documents are not opened.
func (f *Freezer) Embeds(ctx context.Context, docPath string) ([]EmbedInfo, error) {
	content, err := f.vault.Read(ctx, docPath)
	if err != nil {
		return nil, &freeze.ReadError{Path: docPath, Err: err}
	}
	tree := f.engine.Parser().ParseBytes([]byte(content), docPath)

	var out []EmbedInfo
	for _, n := range doctree.Collect(tree.Children, doctree.KindEmbed) {
		info := EmbedInfo{
			Raw:      n.Ref.Raw,
			Target:   n.Ref.Target,
			Fragment: n.Ref.Fragment,
			Asset:    parser.IsAsset(n.Ref.Target),
		}
		if n.Ref.Target == "" {
			info.Resolved, info.Found = docPath, true
		} else {
			resolved, ok, err := f.vault.Resolve(ctx, n.Ref.Target, docPath)
			if err != nil {
				return nil, &freeze.ReadError{Path: n.Ref.Target, Err: err}
			}
			info.Resolved, info.Found = resolved, ok
			if ok && !parser.IsSupportedExtension(resolved) {
				info.Asset = true
			}
		}
		out = append(out, info)
	}
	return out, nil
}
