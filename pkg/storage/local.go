package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// localClient implements Client over a directory on the local
// filesystem, rooted at baseDir. Every path is joined under baseDir and
// checked against directory traversal before use, mirroring the
// path-containment discipline of a volume driver scoping mounts to a
// base path.
type localClient struct {
	baseDir string
}

func newLocalClient(creds LocalCredentials) (*localClient, error) {
	baseDir := creds.BaseDir
	if baseDir == "" {
		return nil, &ErrInvalidPath{Path: baseDir}
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &ErrIO{Cause: err}
	}
	return &localClient{baseDir: baseDir}, nil
}

func (c *localClient) resolve(path string) (string, error) {
	if path == "" {
		return "", &ErrInvalidPath{Path: path}
	}
	joined := filepath.Join(c.baseDir, path)
	rel, err := filepath.Rel(c.baseDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &ErrInvalidPath{Path: path}
	}
	return joined, nil
}

func (c *localClient) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ErrNotFound{Path: path}
		}
		return nil, &ErrIO{Cause: err}
	}
	return f, nil
}

func (c *localClient) Write(ctx context.Context, path string, r io.Reader) (int64, error) {
	full, err := c.resolve(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, &ErrIO{Cause: err}
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, &ErrIO{Cause: err}
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return 0, &ErrIO{Cause: err}
	}
	return n, nil
}
