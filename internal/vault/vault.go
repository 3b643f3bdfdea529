// Package vault is the document store a freeze reads from and writes to:
// link resolution, content loading and creation of the frozen file.
// Paths are vault-relative and slash-separated.
package vault

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a path does not name a stored file.
	ErrNotFound = errors.New("file not found")

	// ErrExists is returned by Create when the destination is taken.
	ErrExists = errors.New("file already exists")

	// ErrOutsideVault is returned for paths that escape the vault root.
	ErrOutsideVault = errors.New("path is outside the vault")
)

// Vault resolves links to stored files and reads and writes their content.
type Vault interface {
	// Resolve maps a link target, as written in the document at from, to the
	// path of a stored file. ok is false when nothing matches.
	Resolve(ctx context.Context, target, from string) (path string, ok bool, err error)

	// Read returns the text content of a stored file.
	Read(ctx context.Context, path string) (string, error)

	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(ctx context.Context, dir string) error

	// Create writes a new file. It fails with ErrExists when path is taken.
	Create(ctx context.Context, path, content string) error
}
