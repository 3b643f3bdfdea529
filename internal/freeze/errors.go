package freeze

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFreeze matches every error produced while freezing or saving a
// document. Use errors.As with the concrete types for detail.
var ErrFreeze = errors.New("freeze failed")

// UnresolvedEmbedError reports an embed whose target names no stored file.
type UnresolvedEmbedError struct {
	Target string
	From   string
}

func (e *UnresolvedEmbedError) Error() string {
	return fmt.Sprintf("file not found: %s (embedded in %s)", e.Target, e.From)
}

func (e *UnresolvedEmbedError) Is(target error) bool { return target == ErrFreeze }

// CyclicEmbedError reports an embed chain that returns to a document already
// being resolved. Cycle lists the documents from the first visit to the
// repeated one, inclusive.
type CyclicEmbedError struct {
	Cycle []string
}

func (e *CyclicEmbedError) Error() string {
	return "cyclic embed: " + strings.Join(e.Cycle, " -> ")
}

func (e *CyclicEmbedError) Is(target error) bool { return target == ErrFreeze }

// ReadError reports a storage failure while loading a resolved document.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrFreeze }

// WriteError reports that the frozen document could not be persisted.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrFreeze }
