// Package freeze replaces every embed in a document tree with the content of
// the document it references, recursively.
package freeze

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
	"github.com/dgallion1/docfreeze/internal/parser"
)

// Resolver maps an embed target, written in the document at from, to a
// stored document path.
type Resolver interface {
	Resolve(ctx context.Context, target, from string) (path string, ok bool, err error)
}

// Loader returns the text of a stored document.
type Loader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Engine resolves embeds. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	resolver Resolver
	loader   Loader
	parser   *parser.MarkdownParser
	log      *slog.Logger
}

func NewEngine(resolver Resolver, loader Loader, p *parser.MarkdownParser, log *slog.Logger) *Engine {
	if p == nil {
		p = parser.NewMarkdownParser(doctree.Dialect)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		resolver: resolver,
		loader:   loader,
		parser:   p,
		log:      log,
	}
}

// Parser returns the parser used for embedded documents.
func (e *Engine) Parser() *parser.MarkdownParser {
	return e.parser
}

// Resolve returns a copy of tree in which every embed of a text document has
// been replaced by that document's content. docPath is the path of the
// document tree was parsed from; visited is the embed chain leading to it and
// may be nil for the document being frozen. The input tree is not modified.
//
// The first failure aborts the whole resolution; no partial tree is returned.
func (e *Engine) Resolve(ctx context.Context, tree *doctree.DocTree, docPath string, visited *Chain) (*doctree.DocTree, error) {
	if visited == nil {
		visited = NewChain(docPath)
	}
	w := &walker{engine: e, ctx: ctx, from: docPath, chain: visited}
	children, err := w.blocks(tree.Children)
	if err != nil {
		return nil, err
	}
	return &doctree.DocTree{
		Title:    tree.Title,
		Meta:     tree.Meta,
		Children: children,
	}, nil
}

// walker resolves the embeds of one document.
type walker struct {
	engine *Engine
	ctx    context.Context
	from   string
	chain  *Chain
}

func (w *walker) blocks(nodes []doctree.Node) ([]doctree.Node, error) {
	out := make([]doctree.Node, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case doctree.KindParagraph, doctree.KindTextBlock:
			resolved, err := w.paragraph(n)
			if err != nil {
				return nil, err
			}
			out = append(out, resolved...)

		case doctree.KindHeading, doctree.KindTableCell:
			inlines, err := w.inlines(n.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, n.WithChildren(inlines))

		case doctree.KindEmbed:
			if !w.resolvable(n) {
				out = append(out, n)
				continue
			}
			body, inlined, err := w.embed(n)
			if err != nil {
				return nil, err
			}
			if !inlined {
				out = append(out, n)
				continue
			}
			out = append(out, body...)

		case doctree.KindList:
			items, err := w.blocks(n.Children)
			if err != nil {
				return nil, err
			}
			if n.Tight && grew(n.Children, items) {
				// A tight list cannot hold several blocks per item.
				n.Tight = false
			}
			out = append(out, n.WithChildren(items))

		default:
			if len(n.Children) == 0 {
				out = append(out, n)
				continue
			}
			children, err := w.blocks(n.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, n.WithChildren(children))
		}
	}
	return out, nil
}

// paragraph resolves the embeds directly inside a paragraph. The result is
// the paragraph itself, or the blocks it splits into around embedded
// multi-block content.
func (w *walker) paragraph(p doctree.Node) ([]doctree.Node, error) {
	var out, run []doctree.Node
	flush := func() {
		if trimmed := doctree.TrimInlines(run); len(trimmed) > 0 {
			out = append(out, p.WithChildren(trimmed))
		}
		run = nil
	}

	for _, in := range p.Children {
		if in.Kind != doctree.KindEmbed || !w.resolvable(in) {
			resolved, err := w.inline(in)
			if err != nil {
				return nil, err
			}
			run = append(run, resolved...)
			continue
		}

		body, inlined, err := w.embed(in)
		if err != nil {
			return nil, err
		}
		if !inlined {
			run = append(run, in)
			continue
		}
		if len(body) == 0 {
			continue
		}
		if len(body) == 1 && (body[0].Kind == doctree.KindParagraph || body[0].Kind == doctree.KindTextBlock) {
			run = append(run, body[0].Children...)
			continue
		}
		flush()
		out = append(out, body...)
	}
	flush()
	return out, nil
}

// inlines resolves embeds in a context that only admits inline content.
func (w *walker) inlines(nodes []doctree.Node) ([]doctree.Node, error) {
	out := make([]doctree.Node, 0, len(nodes))
	for _, n := range nodes {
		resolved, err := w.inline(n)
		if err != nil {
			return nil, err
		}
		out = append(out, resolved...)
	}
	return out, nil
}

func (w *walker) inline(n doctree.Node) ([]doctree.Node, error) {
	if n.Kind == doctree.KindEmbed {
		if !w.resolvable(n) {
			return []doctree.Node{n}, nil
		}
		body, inlined, err := w.embed(n)
		if err != nil {
			return nil, err
		}
		if !inlined {
			return []doctree.Node{n}, nil
		}
		return inlineContent(body), nil
	}
	if len(n.Children) == 0 {
		return []doctree.Node{n}, nil
	}
	children, err := w.inlines(n.Children)
	if err != nil {
		return nil, err
	}
	return []doctree.Node{n.WithChildren(children)}, nil
}

// resolvable reports whether an embed names a text document. Asset embeds
// (images, media, pdf) stay as references.
func (w *walker) resolvable(n doctree.Node) bool {
	target := n.Ref.Target
	if target == "" {
		target = w.from
	}
	return !parser.IsAsset(target)
}

// embed loads, parses and recursively resolves the document an embed
// references, returning its body blocks. inlined is false when the target is
// not a text document; the embed then stays as it is.
func (w *walker) embed(n doctree.Node) (body []doctree.Node, inlined bool, err error) {
	if err := w.ctx.Err(); err != nil {
		return nil, false, err
	}
	ref := n.Ref
	e := w.engine

	path := w.from
	if ref.Target != "" {
		resolved, ok, err := e.resolver.Resolve(w.ctx, ref.Target, w.from)
		if err != nil {
			return nil, false, &ReadError{Path: ref.Target, Err: err}
		}
		if !ok {
			return nil, false, &UnresolvedEmbedError{Target: ref.Target, From: w.from}
		}
		path = resolved
	}

	p, err := parser.ForFile(path, e.parser.Syntax())
	if err != nil {
		e.log.Debug("embed target is not a text document, keeping reference",
			"target", ref.Target, "resolved", path)
		return nil, false, nil
	}

	if w.chain.Contains(path) {
		return nil, false, &CyclicEmbedError{Cycle: w.chain.cycle(path)}
	}

	content, err := e.loader.Read(w.ctx, path)
	if err != nil {
		return nil, false, &ReadError{Path: path, Err: err}
	}
	sub, err := p.Parse(strings.NewReader(content), path)
	if err != nil {
		return nil, false, &ReadError{Path: path, Err: err}
	}

	body = sub.Body()
	if ref.Fragment != "" {
		if selected, ok := selectFragment(body, ref); ok {
			body = selected
		} else {
			e.log.Debug("embed selector not found, inlining whole file",
				"target", ref.Target, "fragment", ref.Fragment, "resolved", path)
		}
	}

	chain := w.chain.Extend(path)
	e.log.Debug("resolving embed",
		"target", ref.Target,
		"from", w.from,
		"resolved", path,
		"depth", chain.Depth(),
	)

	child := &walker{engine: e, ctx: w.ctx, from: path, chain: chain}
	body, err = child.blocks(body)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// inlineContent reduces blocks to inline content, joining blocks with a
// space. Line breaks are dropped.
func inlineContent(blocks []doctree.Node) []doctree.Node {
	var out []doctree.Node
	appendGroup := func(group []doctree.Node) {
		group = doctree.TrimInlines(flattenBreaks(group))
		if len(group) == 0 {
			return
		}
		if len(out) > 0 {
			out = append(out, doctree.Text(" "))
		}
		out = append(out, group...)
	}

	var walk func([]doctree.Node)
	walk = func(nodes []doctree.Node) {
		for _, b := range nodes {
			switch b.Kind {
			case doctree.KindParagraph, doctree.KindTextBlock, doctree.KindHeading, doctree.KindTableCell:
				appendGroup(b.Children)
			case doctree.KindCodeBlock, doctree.KindFencedCode:
				code := strings.Join(strings.Fields(b.Literal), " ")
				if code != "" {
					appendGroup([]doctree.Node{{Kind: doctree.KindCodeSpan, Literal: code}})
				}
			case doctree.KindFrontMatter, doctree.KindHTMLBlock, doctree.KindThematicBreak:
			default:
				if !b.Kind.IsBlock() {
					appendGroup([]doctree.Node{b})
					continue
				}
				walk(b.Children)
			}
		}
	}
	walk(blocks)
	return out
}

// flattenBreaks turns line breaks into spaces, recursively.
func flattenBreaks(nodes []doctree.Node) []doctree.Node {
	out := make([]doctree.Node, len(nodes))
	for i, n := range nodes {
		if n.SoftBreak || n.HardBreak {
			n.SoftBreak, n.HardBreak = false, false
			n.Literal += " "
		}
		if len(n.Children) > 0 {
			n = n.WithChildren(flattenBreaks(n.Children))
		}
		out[i] = n
	}
	return out
}

// grew reports whether any list item gained blocks during resolution.
func grew(before, after []doctree.Node) bool {
	for i := range before {
		if i < len(after) && len(after[i].Children) > len(before[i].Children) {
			return true
		}
	}
	return false
}
