package doctree

import "strings"

// Syntax is the closed set of grammar extensions layered on top of
// CommonMark. The same set configures the parser and the serializer.
type Syntax uint8

const (
	FrontMatter Syntax = 1 << iota
	Tables
	WikiLinks
	Tags
	Strikethrough
	TaskLists
)

// Dialect enables every extension.
const Dialect = FrontMatter | Tables | WikiLinks | Tags | Strikethrough | TaskLists

// Has reports whether all extensions in x are enabled.
func (s Syntax) Has(x Syntax) bool {
	return s&x == x
}

func (s Syntax) String() string {
	names := []struct {
		bit  Syntax
		name string
	}{
		{FrontMatter, "frontmatter"},
		{Tables, "tables"},
		{WikiLinks, "wikilinks"},
		{Tags, "tags"},
		{Strikethrough, "strikethrough"},
		{TaskLists, "tasklists"},
	}
	var parts []string
	for _, n := range names {
		if s.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "commonmark"
	}
	return strings.Join(parts, "+")
}
