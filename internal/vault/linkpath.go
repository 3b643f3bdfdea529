package vault

import (
	"path"
	"sort"
	"strings"
)

// ResolveLinkpath picks the stored file a link target refers to, following
// the editor's rules:
//
//   - the '#' fragment is ignored;
//   - targets starting with ./ or ../ are relative to the linking document;
//   - an exact vault path wins, with or without the .md extension;
//   - otherwise files are matched by name (or by path suffix when the target
//     contains a '/'), case-insensitively;
//   - among several matches, a file in the linking document's directory wins,
//     then the shortest path, then the lexically smallest.
func ResolveLinkpath(paths []string, target, from string) (string, bool) {
	link := strings.TrimSpace(target)
	if i := strings.Index(link, "#"); i >= 0 {
		link = strings.TrimSpace(link[:i])
	}
	link = strings.TrimPrefix(link, "/")
	if link == "" {
		return "", false
	}

	index := make(map[string]string, len(paths))
	for _, p := range paths {
		index[strings.ToLower(p)] = p
	}
	lookup := func(p string) (string, bool) {
		p = path.Clean(p)
		for _, candidate := range []string{p, p + ".md"} {
			if hit, ok := index[strings.ToLower(candidate)]; ok {
				return hit, true
			}
		}
		return "", false
	}

	fromDir := path.Dir(from)
	if strings.HasPrefix(link, "./") || strings.HasPrefix(link, "../") {
		return lookup(path.Join(fromDir, link))
	}
	if hit, ok := lookup(link); ok {
		return hit, true
	}
	if hit, ok := lookup(path.Join(fromDir, link)); ok {
		return hit, true
	}

	lower := strings.ToLower(link)
	var candidates []string
	for _, p := range paths {
		lp := strings.ToLower(p)
		if hasPathSuffix(lp, lower) || hasPathSuffix(lp, lower+".md") {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aLocal, bLocal := path.Dir(a) == fromDir, path.Dir(b) == fromDir
		if aLocal != bLocal {
			return aLocal
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return candidates[0], true
}

func hasPathSuffix(p, suffix string) bool {
	return p == suffix || strings.HasSuffix(p, "/"+suffix)
}
