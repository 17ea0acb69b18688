package secondary

import "context"

// Workspace defines the secondary port for writing into the target project.
type Workspace interface {
	// CreateDirectory creates path and its parents; an existing directory is left alone.
	CreateDirectory(ctx context.Context, path string, mode uint32) error

	// DirectoryExists reports whether path is an existing directory.
	DirectoryExists(ctx context.Context, path string) (bool, error)

	// FileExists reports whether path is an existing regular file.
	FileExists(ctx context.Context, path string) (bool, error)

	// WriteFile creates or overwrites path, creating parent directories.
	WriteFile(ctx context.Context, path string, content []byte, mode uint32) error

	// AppendFile appends to path, creating it and its parents when missing.
	AppendFile(ctx context.Context, path string, content []byte, mode uint32) error
}
