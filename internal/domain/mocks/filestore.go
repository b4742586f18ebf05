package mocks

import (
	"context"
	"fmt"
	"sort"
)

// FileStore is an in-memory implementation of ports.FileStore.
type FileStore struct {
	Folders map[string]bool
	Files   map[string]string

	// Errors keyed by path
	CreateErrs map[string]error
	WriteErrs  map[string]error
	FolderErr  error

	// Call tracking
	CreateCalls       []string
	WriteCalls        []string
	CreateFolderCalls []string
}

// NewFileStore creates an empty store.
func NewFileStore() *FileStore {
	return &FileStore{
		Folders: make(map[string]bool),
		Files:   make(map[string]string),
	}
}

// FolderExists reports whether the folder was created.
func (m *FileStore) FolderExists(ctx context.Context, path string) (bool, error) {
	return m.Folders[path], nil
}

// CreateFolder records the folder.
func (m *FileStore) CreateFolder(ctx context.Context, path string) error {
	m.CreateFolderCalls = append(m.CreateFolderCalls, path)
	if m.FolderErr != nil {
		return m.FolderErr
	}
	if m.Folders[path] {
		return fmt.Errorf("folder already exists: %s", path)
	}
	m.Folders[path] = true
	return nil
}

// FileExists reports whether the file is present.
func (m *FileStore) FileExists(ctx context.Context, path string) (bool, error) {
	_, ok := m.Files[path]
	return ok, nil
}

// Create stores a new file, failing if it exists.
func (m *FileStore) Create(ctx context.Context, path, content string) error {
	m.CreateCalls = append(m.CreateCalls, path)
	if err := m.CreateErrs[path]; err != nil {
		return err
	}
	if _, ok := m.Files[path]; ok {
		return fmt.Errorf("file already exists: %s", path)
	}
	m.Files[path] = content
	return nil
}

// Write replaces an existing file.
func (m *FileStore) Write(ctx context.Context, path, content string) error {
	m.WriteCalls = append(m.WriteCalls, path)
	if err := m.WriteErrs[path]; err != nil {
		return err
	}
	m.Files[path] = content
	return nil
}

// Paths returns every stored file path, sorted.
func (m *FileStore) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
