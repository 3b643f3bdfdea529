package parser

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
)

var frontMatterDelims = []string{"---", "+++"}

// splitFrontMatter separates a leading front-matter block from the markdown
// body. The block is returned verbatim, delimiters included, so it can be
// written back untouched. meta is nil when the block cannot be decoded.
func splitFrontMatter(src []byte) (raw string, meta map[string]any, body []byte) {
	delim, ok := openingDelim(src)
	if !ok {
		return "", nil, src
	}

	var decoded map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(src), &decoded)
	if err == nil && len(rest) < len(src) && bytes.HasSuffix(src, rest) {
		head := src[:len(src)-len(rest)]
		return strings.TrimRight(string(head), "\r\n"), decoded, rest
	}

	// Undecodable metadata is still front matter to the editor, keep the
	// block when its closing delimiter can be found.
	head, rest, ok := scanBlock(src, delim)
	if !ok {
		return "", nil, src
	}
	return strings.TrimRight(string(head), "\r\n"), nil, rest
}

func openingDelim(src []byte) (string, bool) {
	firstLine, _, _ := bytes.Cut(src, []byte("\n"))
	firstLine = bytes.TrimRight(firstLine, " \t\r")
	for _, d := range frontMatterDelims {
		if string(firstLine) == d {
			return d, true
		}
	}
	return "", false
}

// scanBlock finds the closing delimiter line and splits src after it.
func scanBlock(src []byte, delim string) (head, rest []byte, ok bool) {
	offset := bytes.IndexByte(src, '\n')
	if offset < 0 {
		return nil, nil, false
	}
	offset++
	for offset < len(src) {
		end := bytes.IndexByte(src[offset:], '\n')
		var line []byte
		next := len(src)
		if end < 0 {
			line = src[offset:]
		} else {
			line = src[offset : offset+end]
			next = offset + end + 1
		}
		if string(bytes.TrimRight(line, " \t\r")) == delim {
			return src[:next], src[next:], true
		}
		offset = next
	}
	return nil, nil, false
}
