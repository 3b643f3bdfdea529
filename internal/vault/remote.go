package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docfreeze/internal/pathstore"
)

// maxListing bounds the prefix scan used for link resolution.
const maxListing = 10000

// Remote is a vault stored in pathstore. Each file is a node under prefix;
// folders have no node of their own and exist while they hold a file.
type Remote struct {
	client *pathstore.Client
	prefix string
}

func NewRemote(client *pathstore.Client, prefix string) *Remote {
	return &Remote{client: client, prefix: strings.Trim(prefix, "/")}
}

func (r *Remote) Resolve(ctx context.Context, target, from string) (string, bool, error) {
	nodes, err := r.client.ListChildren(ctx, r.prefix, maxListing)
	if err != nil {
		return "", false, fmt.Errorf("list vault: %w", err)
	}
	paths := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if r.prefix == "" {
			paths = append(paths, n.Key)
		} else if p, ok := strings.CutPrefix(n.Key, r.prefix+"/"); ok {
			paths = append(paths, p)
		}
	}
	p, ok := ResolveLinkpath(paths, target, from)
	return p, ok, nil
}

func (r *Remote) Read(ctx context.Context, p string) (string, error) {
	node, err := r.client.GetNode(ctx, r.key(p))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	if node == nil {
		return "", fmt.Errorf("read %s: %w", p, ErrNotFound)
	}
	doc, ok := pathstore.DocumentOf(node.Value)
	if !ok {
		return "", fmt.Errorf("read %s: node holds no document content", p)
	}
	return doc.Content, nil
}

func (r *Remote) Exists(ctx context.Context, p string) (bool, error) {
	node, err := r.client.GetNode(ctx, r.key(p))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	if node != nil {
		return true, nil
	}
	children, err := r.client.ListChildren(ctx, r.key(p), 1)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return len(children) > 0, nil
}

// MkdirAll is a no-op: folders are implied by the keys beneath them.
func (r *Remote) MkdirAll(ctx context.Context, dir string) error {
	return nil
}

// Create stores a new document. The existence check and the write are two
// requests, so a concurrent writer can still win the race.
func (r *Remote) Create(ctx context.Context, p, content string) error {
	key := r.key(p)
	existing, err := r.client.GetNode(ctx, key)
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	if existing != nil {
		return fmt.Errorf("create %s: %w", p, ErrExists)
	}
	err = r.client.PutNode(ctx, key, pathstore.NodeRequest{
		Value:  pathstore.Document{Content: content, Source: "docfreeze"},
		Source: "docfreeze",
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	return nil
}

func (r *Remote) key(p string) string {
	p = clean(p)
	if r.prefix == "" {
		return p
	}
	if p == "" {
		return r.prefix
	}
	return r.prefix + "/" + p
}
