package ports

import "context"

// FileStore is the note vault the pipeline writes into.
// Paths are slash-separated and relative to the vault root.
type FileStore interface {
	// FolderExists reports whether a folder exists at path.
	FolderExists(ctx context.Context, path string) (bool, error)

	// CreateFolder creates a folder at path.
	CreateFolder(ctx context.Context, path string) error

	// FileExists reports whether a file exists at path.
	FileExists(ctx context.Context, path string) (bool, error)

	// Create creates a new file. It fails if the file already exists.
	Create(ctx context.Context, path, content string) error

	// Write replaces the full content of an existing file.
	Write(ctx context.Context, path, content string) error
}
