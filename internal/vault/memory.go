package vault

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process vault. It backs previews of unsaved documents and
// tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
	dirs  map[string]bool
}

// NewMemory returns a vault holding files, keyed by vault path. The folders
// containing them exist implicitly.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{
		files: make(map[string]string, len(files)),
		dirs:  map[string]bool{"": true},
	}
	for p, content := range files {
		m.put(clean(p), content)
	}
	return m
}

func (m *Memory) Resolve(ctx context.Context, target, from string) (string, bool, error) {
	p, ok := ResolveLinkpath(m.Paths(), target, from)
	return p, ok, nil
}

func (m *Memory) Read(ctx context.Context, p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[clean(p)]
	if !ok {
		return "", fmt.Errorf("read %s: %w", p, ErrNotFound)
	}
	return content, nil
}

func (m *Memory) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p = clean(p)
	_, isFile := m.files[p]
	return isFile || m.dirs[p], nil
}

func (m *Memory) MkdirAll(ctx context.Context, dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = clean(dir)
	if _, isFile := m.files[dir]; isFile {
		return fmt.Errorf("create folder %s: %w", dir, ErrExists)
	}
	m.mkdirs(dir)
	return nil
}

func (m *Memory) Create(ctx context.Context, p, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = clean(p)
	if _, taken := m.files[p]; taken || m.dirs[p] {
		return fmt.Errorf("create %s: %w", p, ErrExists)
	}
	if dir := parent(p); !m.dirs[dir] {
		return fmt.Errorf("create %s: folder %q: %w", p, dir, ErrNotFound)
	}
	m.files[p] = content
	return nil
}

// Paths lists every stored file in lexical order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *Memory) put(p, content string) {
	m.files[p] = content
	m.mkdirs(parent(p))
}

func (m *Memory) mkdirs(dir string) {
	for dir != "" && !m.dirs[dir] {
		m.dirs[dir] = true
		dir = parent(dir)
	}
}

func clean(p string) string {
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func parent(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
