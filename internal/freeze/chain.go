package freeze

// Chain is the set of documents on the current embed path, from the document
// being frozen down to the one being resolved. It is immutable: Extend
// returns a new chain sharing its parent, so sibling embeds each carry their
// own path and a document embedded twice side by side is not a cycle.
type Chain struct {
	path   string
	parent *Chain
	depth  int
}

// NewChain starts a chain at the document being frozen.
func NewChain(root string) *Chain {
	return &Chain{path: root}
}

// Extend returns the chain with path appended.
func (c *Chain) Extend(path string) *Chain {
	return &Chain{path: path, parent: c, depth: c.depth + 1}
}

// Contains reports whether path is already on the chain.
func (c *Chain) Contains(path string) bool {
	for link := c; link != nil; link = link.parent {
		if link.path == path {
			return true
		}
	}
	return false
}

// Depth is the number of embeds between the root and the current document.
func (c *Chain) Depth() int {
	return c.depth
}

// Paths lists the chain root first.
func (c *Chain) Paths() []string {
	paths := make([]string, c.depth+1)
	for link := c; link != nil; link = link.parent {
		paths[link.depth] = link.path
	}
	return paths
}

// cycle returns the loop that revisiting path would close.
func (c *Chain) cycle(path string) []string {
	paths := c.Paths()
	for i, p := range paths {
		if p == path {
			return append(paths[i:], path)
		}
	}
	return append(paths, path)
}
