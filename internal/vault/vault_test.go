package vault

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dgallion1/docfreeze/internal/pathstore"
)

func TestResolveLinkpath(t *testing.T) {
	paths := []string{
		"Index.md",
		"notes/Recipe.md",
		"notes/daily/2024-01-01.md",
		"archive/Recipe.md",
		"deep/nested/archive/Recipe.md",
		"img/cat.png",
		"Meeting Notes.md",
	}

	tests := []struct {
		name   string
		target string
		from   string
		want   string
		ok     bool
	}{
		{"exact with extension", "Index.md", "notes/a.md", "Index.md", true},
		{"exact without extension", "Index", "notes/a.md", "Index.md", true},
		{"case insensitive", "index", "x.md", "Index.md", true},
		{"fragment ignored", "Index#Intro", "x.md", "Index.md", true},
		{"spaces in name", "Meeting Notes", "x.md", "Meeting Notes.md", true},
		{"same directory preferred", "Recipe", "archive/list.md", "archive/Recipe.md", true},
		{"shortest path otherwise", "Recipe", "other/x.md", "notes/Recipe.md", true},
		{"path suffix", "nested/archive/Recipe", "x.md", "deep/nested/archive/Recipe.md", true},
		{"relative to source", "./Recipe", "notes/x.md", "notes/Recipe.md", true},
		{"parent relative", "../Index", "notes/x.md", "Index.md", true},
		{"relative escaping vault", "../../Index", "notes/x.md", "", false},
		{"asset by name", "cat.png", "x.md", "img/cat.png", true},
		{"missing", "Nope", "x.md", "", false},
		{"empty", "", "x.md", "", false},
		{"fragment only", "#Heading", "x.md", "", false},
		{"partial name is not a match", "ecipe", "x.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveLinkpath(paths, tt.target, tt.from)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ResolveLinkpath(%q, from %q) = (%q, %v), want (%q, %v)", tt.target, tt.from, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestResolveLinkpath_LexicalTieBreak(t *testing.T) {
	paths := []string{"b/Same.md", "a/Same.md"}
	got, ok := ResolveLinkpath(paths, "Same", "c/x.md")
	if !ok || got != "a/Same.md" {
		t.Errorf("expected a/Same.md, got %q (ok=%v)", got, ok)
	}
}

// exerciseVault runs the behaviour every backend must share. The vault must
// hold notes/A.md = "alpha" and nothing else under notes/.
func exerciseVault(t *testing.T, v Vault) {
	t.Helper()
	ctx := context.Background()

	p, ok, err := v.Resolve(ctx, "A", "notes/other.md")
	if err != nil || !ok || p != "notes/A.md" {
		t.Fatalf("Resolve(A) = (%q, %v, %v)", p, ok, err)
	}
	if _, ok, _ := v.Resolve(ctx, "Missing", "notes/other.md"); ok {
		t.Error("expected Missing to be unresolved")
	}

	content, err := v.Read(ctx, "notes/A.md")
	if err != nil || content != "alpha" {
		t.Fatalf("Read = (%q, %v)", content, err)
	}
	if _, err := v.Read(ctx, "notes/none.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if exists, _ := v.Exists(ctx, "notes/A.md"); !exists {
		t.Error("expected notes/A.md to exist")
	}
	if exists, _ := v.Exists(ctx, "notes/B.md"); exists {
		t.Error("expected notes/B.md not to exist")
	}

	if err := v.MkdirAll(ctx, "notes/archive"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := v.Create(ctx, "notes/archive/A_freeze.md", "frozen"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got, _ := v.Read(ctx, "notes/archive/A_freeze.md"); got != "frozen" {
		t.Errorf("expected created content, got %q", got)
	}
	if err := v.Create(ctx, "notes/archive/A_freeze.md", "again"); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists on second create, got %v", err)
	}
	if got, _ := v.Read(ctx, "notes/archive/A_freeze.md"); got != "frozen" {
		t.Errorf("existing file was overwritten: %q", got)
	}
}

func TestMemory(t *testing.T) {
	exerciseVault(t, NewMemory(map[string]string{"notes/A.md": "alpha"}))
}

func TestMemory_CreateNeedsFolder(t *testing.T) {
	m := NewMemory(nil)
	err := m.Create(context.Background(), "missing/x.md", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing folder, got %v", err)
	}
	if err := m.Create(context.Background(), "x.md", "x"); err != nil {
		t.Errorf("root create failed: %v", err)
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes", "A.md"), []byte("alpha"), 0o644); err != nil {
		t.Fatal(err)
	}
	exerciseVault(t, NewDir(root))
}

func TestDir_SkipsDotDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".trash"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".trash", "Gone.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := NewDir(root).Resolve(context.Background(), "Gone", "x.md"); ok || err != nil {
		t.Errorf("expected Gone to be hidden, got ok=%v err=%v", ok, err)
	}
}

func TestDir_RejectsEscapes(t *testing.T) {
	d := NewDir(t.TempDir())
	if _, err := d.Read(context.Background(), "../etc/passwd"); !errors.Is(err, ErrOutsideVault) {
		t.Errorf("expected ErrOutsideVault, got %v", err)
	}
}

// fakePathstore is a minimal in-memory pathstore KV API.
type fakePathstore struct {
	mu    sync.Mutex
	nodes map[string]any
}

func (f *fakePathstore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/kv/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		prefix := strings.TrimSuffix(key, "*")
		var nodes []pathstore.ListChildrenResponse
		for k, v := range f.nodes {
			if strings.HasPrefix(k, prefix) {
				nodes = append(nodes, pathstore.ListChildrenResponse{Key: k, Value: v})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
	case r.Method == http.MethodGet:
		v, ok := f.nodes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(pathstore.NodeResponse{Key: key, Value: v})
	case r.Method == http.MethodPut:
		var req pathstore.NodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestRemote(t *testing.T) {
	fake := &fakePathstore{nodes: map[string]any{
		"vault/notes/A.md": map[string]any{"content": "alpha"},
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client := pathstore.NewClient(srv.URL, "secret")
	defer client.Close()
	exerciseVault(t, NewRemote(client, "vault"))
}

func TestRemote_PlainStringValue(t *testing.T) {
	fake := &fakePathstore{nodes: map[string]any{"vault/x.md": "plain"}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	got, err := NewRemote(pathstore.NewClient(srv.URL, "secret"), "/vault/").Read(context.Background(), "x.md")
	if err != nil || got != "plain" {
		t.Errorf("Read = (%q, %v)", got, err)
	}
}
