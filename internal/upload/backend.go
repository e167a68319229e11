package upload

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Backend persists one object and returns the URL it is reachable at.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// LocalBackend writes files into a directory that the HTTP server exposes
// under PublicPath.
type LocalBackend struct {
	dir        string
	publicPath string
}

func NewLocalBackend(dir, publicPath string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalBackend{
		dir:        dir,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

func (b *LocalBackend) Dir() string {
	return b.dir
}

// Put writes data under key. Keys may contain slashes; ".." segments are
// cleaned away so writes stay inside the upload directory.
func (b *LocalBackend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" {
		return "", fmt.Errorf("invalid file name %q", key)
	}

	full := filepath.Join(b.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return b.publicPath + "/" + rel, nil
}
