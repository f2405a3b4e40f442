package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// Ensure LocalFeedSource implements FeedSource
var _ catalogapp.FeedSource = (*LocalFeedSource)(nil)

// LocalFeedSource reads feed files from a directory. Used for development
// and for deployments that drop feeds on a shared volume.
type LocalFeedSource struct {
	root *os.Root
	dir  string
}

// NewLocalFeedSource opens dir as the feed root, creating it when missing
func NewLocalFeedSource(dir string) (*LocalFeedSource, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}
	return &LocalFeedSource{root: root, dir: dir}, nil
}

// Open opens the file named key below the feed directory.
// Keys that would leave the directory are rejected.
func (s *LocalFeedSource) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.FromSlash(strings.TrimSpace(key))
	if name == "" || !filepath.IsLocal(name) {
		return nil, shared.NewValidationError("key", "feed key must be a relative path inside the feed directory")
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, shared.NewNotFoundError("feed object")
		}
		return nil, shared.NewFatalError(err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, shared.NewFatalError(err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, shared.NewValidationError("key", "feed key names a directory")
	}
	return f, nil
}

// Dir returns the feed directory
func (s *LocalFeedSource) Dir() string {
	return s.dir
}

// Close releases the directory handle
func (s *LocalFeedSource) Close() error {
	return s.root.Close()
}
