package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is the local-filesystem backend: a directory tree with one
// subdirectory per asset kind, created on startup if absent.
type FSStore struct {
	root string
}

// NewFSStore prepares the upload directory tree under root.
func NewFSStore(root string) (*FSStore, error) {
	for _, kind := range []Kind{KindAudio, KindCover} {
		dir := filepath.Join(root, string(kind))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
		}
	}
	return &FSStore{root: root}, nil
}

// Put stores a new asset and returns its ref.
func (s *FSStore) Put(ctx context.Context, kind Kind, originalName string, r io.Reader, size int64, contentType string) (AssetRef, error) {
	key, err := objectKey(originalName)
	if err != nil {
		return AssetRef{}, err
	}
	ref := AssetRef{Kind: kind, Key: key}

	// O_EXCL: generated keys are unique, a clash means something is wrong.
	f, err := os.OpenFile(s.diskPath(ref.ObjectPath()), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return AssetRef{}, fmt.Errorf("failed to create %s: %w", ref.ObjectPath(), err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return AssetRef{}, fmt.Errorf("failed to write %s: %w", ref.ObjectPath(), err)
	}
	if err := f.Close(); err != nil {
		return AssetRef{}, fmt.Errorf("failed to close %s: %w", ref.ObjectPath(), err)
	}
	return ref, nil
}

// Exists reports whether the referenced file is present.
func (s *FSStore) Exists(ctx context.Context, ref AssetRef) (bool, error) {
	_, err := os.Stat(s.diskPath(ref.ObjectPath()))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", ref.ObjectPath(), err)
	}
	return true, nil
}

// Remove deletes the referenced file.
func (s *FSStore) Remove(ctx context.Context, ref AssetRef) error {
	if err := os.Remove(s.diskPath(ref.ObjectPath())); err != nil {
		return fmt.Errorf("failed to remove %s: %w", ref.ObjectPath(), err)
	}
	return nil
}

// Open reads back a stored file by its object path.
func (s *FSStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	if strings.Contains(objectPath, "..") {
		return nil, fmt.Errorf("invalid object path %q", objectPath)
	}
	f, err := os.Open(s.diskPath(objectPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectPath, err)
	}
	return f, nil
}

func (s *FSStore) diskPath(objectPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(objectPath))
}
