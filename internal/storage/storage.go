package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neighborly/internal/logging"
)

// BlobStore is the asset storage backend. The media pipeline hands finished
// assets to it and does not care where they land.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// DiskStore stores blobs under a root directory, one file per key.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &DiskStore{root: root}, nil
}

// Put writes the blob for key, creating intermediate directories. Keys must
// stay inside the root; path traversal is rejected.
func (s *DiskStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}

	logging.Debug("stored blob %s (%d bytes, %s)", key, len(data), contentType)
	return nil
}

// resolve maps a key to an absolute path inside the root.
func (s *DiskStore) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	path := filepath.Join(s.root, filepath.FromSlash(key))

	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("blob key %q escapes storage root", key)
	}
	return absPath, nil
}
