package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bilgisen/pubserve/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// ErrNotFound covers every lookup that cannot produce a readable regular
// file: missing, directory, permission denied, outside the public root, or
// abandoned because the request context is done.
var ErrNotFound = errors.New("asset not found")

// Storage resolves request paths against the public root. The root is
// opened once and confines every lookup, symlinks included.
type Storage struct {
	basePath string
	index    string
	root     *os.Root
}

// NewStorage opens basePath as the public root. If it cannot be opened the
// returned Storage is still usable and reports every lookup as not found;
// the error says why.
func NewStorage(basePath, index string) (*Storage, error) {
	s := &Storage{
		basePath: basePath,
		index:    index,
	}

	root, err := os.OpenRoot(basePath)
	if err != nil {
		return s, fmt.Errorf("failed to open public root: %w", err)
	}
	s.root = root

	return s, nil
}

// BasePath returns the public root as configured.
func (s *Storage) BasePath() string {
	return s.basePath
}

// Open resolves name, a slash-separated request path, to a regular file
// under the public root. The path is normalized against a virtual "/" first
// so ".." segments cannot climb above the root.
func (s *Storage) Open(ctx context.Context, name string) (*models.Asset, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNotFound, ctx.Err())
	default:
	}

	rel := Clean(name)
	if s.root == nil {
		return nil, fmt.Errorf("%w: %s: public root unavailable", ErrNotFound, rel)
	}

	f, err := s.root.Open(filepath.FromSlash(rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrNotFound, rel)
	}

	return &models.Asset{
		Name:        rel,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: ContentType(rel),
		Body:        f,
	}, nil
}

// OpenIndex opens the default document.
func (s *Storage) OpenIndex(ctx context.Context) (*models.Asset, error) {
	return s.Open(ctx, s.index)
}

// Close releases the public root handle.
func (s *Storage) Close() error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

// Clean maps a request path to a root-relative slash path. The empty path
// and "/" map to ".".
func Clean(name string) string {
	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	if rel == "" {
		return "."
	}
	return rel
}

// ContentType infers the MIME type from the file extension, falling back to
// application/octet-stream.
func ContentType(name string) string {
	ext := path.Ext(name)
	if ext == "" {
		return fiber.MIMEOctetStream
	}
	return utils.GetMIME(ext)
}
