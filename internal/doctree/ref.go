package doctree

import "strings"

// Ref is the body of a wikilink or embed: target#fragment|alias.
type Ref struct {
	Raw      string // Exact text between the brackets
	Target   string // Document name or path, empty for same-document anchors
	Fragment string // Heading or ^block selector, without the leading '#'
	Alias    string // Display text after '|'
}

// ParseRef splits the body of a [[...]] construct.
func ParseRef(raw string) Ref {
	r := Ref{Raw: raw}
	body := raw
	if i := strings.Index(body, "|"); i >= 0 {
		r.Alias = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}
	body = strings.TrimSuffix(body, `\`) // escaped pipe inside tables
	if i := strings.Index(body, "#"); i >= 0 {
		r.Fragment = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}
	r.Target = strings.TrimSpace(body)
	return r
}

// BlockSelector returns the block id of a ^block fragment.
func (r Ref) BlockSelector() (string, bool) {
	if strings.HasPrefix(r.Fragment, "^") {
		return strings.TrimPrefix(r.Fragment, "^"), true
	}
	return "", false
}

// Label is the text a reader sees for the reference.
func (r Ref) Label() string {
	if r.Alias != "" {
		return r.Alias
	}
	if r.Target == "" {
		return r.Fragment
	}
	if r.Fragment != "" {
		return r.Target + " > " + r.Fragment
	}
	return r.Target
}
