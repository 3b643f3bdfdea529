package freeze

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestChain_ExtendIsCopyOnWrite(t *testing.T) {
	root := NewChain("D.md")
	left := root.Extend("E.md")
	right := root.Extend("F.md")

	if root.Contains("E.md") || root.Contains("F.md") {
		t.Error("extending must not change the parent chain")
	}
	if !left.Contains("E.md") || left.Contains("F.md") {
		t.Error("left branch should only see its own documents")
	}
	if !right.Contains("D.md") {
		t.Error("branches should see the root")
	}
	if got := left.Extend("G.md").Paths(); !reflect.DeepEqual(got, []string{"D.md", "E.md", "G.md"}) {
		t.Errorf("unexpected paths %v", got)
	}
	if left.Depth() != 1 {
		t.Errorf("unexpected depth %d", left.Depth())
	}
}

func TestChain_Cycle(t *testing.T) {
	c := NewChain("A.md").Extend("B.md").Extend("C.md")
	if got := c.cycle("B.md"); !reflect.DeepEqual(got, []string{"B.md", "C.md", "B.md"}) {
		t.Errorf("unexpected cycle %v", got)
	}
}

func TestErrors_MatchErrFreeze(t *testing.T) {
	cause := errors.New("boom")
	errs := []error{
		&UnresolvedEmbedError{Target: "x", From: "y.md"},
		&CyclicEmbedError{Cycle: []string{"a.md", "a.md"}},
		&ReadError{Path: "a.md", Err: cause},
		&WriteError{Path: "a_freeze.md", Err: cause},
	}
	for _, err := range errs {
		wrapped := fmt.Errorf("freezing: %w", err)
		if !errors.Is(wrapped, ErrFreeze) {
			t.Errorf("%T does not match ErrFreeze", err)
		}
	}

	var we *WriteError
	if !errors.As(fmt.Errorf("save: %w", errs[3]), &we) || !errors.Is(we, cause) {
		t.Error("expected WriteError to unwrap to its cause")
	}
	if got := errs[1].Error(); got != "cyclic embed: a.md -> a.md" {
		t.Errorf("unexpected message %q", got)
	}
}
