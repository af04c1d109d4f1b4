// Package localfs serves the compound images and pronunciation audio that
// corpus documents reference by relative path.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type MediaStorage struct {
	basePath string
}

func New(basePath string) (*MediaStorage, error) {
	if basePath == "" {
		basePath = "./data/media"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &MediaStorage{basePath: basePath}, nil
}

// Open resolves a corpus-relative media key. Keys are cleaned and pinned
// under the base path so a crafted key cannot escape it.
func (s *MediaStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	clean := filepath.Clean("/" + key)
	path := filepath.Join(s.basePath, clean)
	if !strings.HasPrefix(path, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("invalid media key %q", key)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open media file: %w", err)
	}
	return f, nil
}

func (s *MediaStorage) Save(_ context.Context, key string, data io.Reader) error {
	path := filepath.Join(s.basePath, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create media subdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}
