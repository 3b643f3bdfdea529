package parser

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dgallion1/docfreeze/internal/doctree"
)

// Parser converts raw document bytes into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// SupportedExtensions lists file extensions whose content can be inlined.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// AssetExtensions lists embed targets that are not text documents. Embeds of
// these are left as references.
var AssetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".svg": true, ".webp": true, ".avif": true,
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true, ".3gp": true, ".webm": true,
	".mp4": true, ".ogv": true, ".mov": true, ".mkv": true,
	".pdf": true, ".canvas": true, ".base": true,
}

// ForFile returns the parser for a filename, configured with syntax. Files
// that are not text documents have no parser.
func ForFile(filename string, syntax doctree.Syntax) (Parser, error) {
	ext := lowerExt(filename)
	switch ext {
	case ".md", ".markdown":
		return NewMarkdownParser(syntax), nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[lowerExt(filename)]
}

// IsAsset reports whether an embed target names a non-text asset.
func IsAsset(target string) bool {
	return AssetExtensions[lowerExt(target)]
}

func lowerExt(name string) string {
	return strings.ToLower(path.Ext(name))
}
