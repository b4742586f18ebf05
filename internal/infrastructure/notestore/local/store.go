// Package local provides a ports.FileStore backed by a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideRoot is returned for paths that resolve outside the vault root.
	ErrOutsideRoot = errors.New("path escapes vault root")
	// ErrAbsolutePath is returned for absolute paths. Store paths are
	// relative to the vault root.
	ErrAbsolutePath = errors.New("path must be relative to the vault root")
)

// Store implements ports.FileStore on the local filesystem.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. The root must exist.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute vault root.
func (s *Store) Root() string {
	return s.root
}

// FolderExists reports whether a directory exists at path.
func (s *Store) FolderExists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// CreateFolder creates the directory and any missing parents.
func (s *Store) CreateFolder(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0755)
}

// FileExists reports whether a regular file exists at path.
func (s *Store) FileExists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// Create writes a new file and fails with os.ErrExist if it is already there.
func (s *Store) Create(ctx context.Context, path, content string) (err error) {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()
	_, err = f.WriteString(content)
	return err
}

// Write replaces the content of an existing file.
func (s *Store) Write(ctx context.Context, path, content string) (err error) {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()
	_, err = f.WriteString(content)
	return err
}

// resolve maps a vault path onto the filesystem, rejecting escapes.
func (s *Store) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "/") || filepath.IsAbs(path) || filepath.VolumeName(path) != "" {
		return "", fmt.Errorf("%w: %s", ErrAbsolutePath, path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return full, nil
}
