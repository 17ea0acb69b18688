// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/crudmaker/internal/ports/secondary"
)

// WorkspaceAdapter implements secondary.Workspace on the local file system.
type WorkspaceAdapter struct{}

var _ secondary.Workspace = (*WorkspaceAdapter)(nil)

// NewWorkspaceAdapter creates a new filesystem workspace adapter.
func NewWorkspaceAdapter() *WorkspaceAdapter {
	return &WorkspaceAdapter{}
}

// CreateDirectory creates a directory and its parents when missing.
func (a *WorkspaceAdapter) CreateDirectory(ctx context.Context, path string, mode uint32) error {
	exists, err := a.DirectoryExists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := os.MkdirAll(path, os.FileMode(mode)); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// DirectoryExists checks if a directory exists.
func (a *WorkspaceAdapter) DirectoryExists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}

// FileExists checks if a regular file exists.
func (a *WorkspaceAdapter) FileExists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// WriteFile creates or overwrites a file.
func (a *WorkspaceAdapter) WriteFile(ctx context.Context, path string, content []byte, mode uint32) error {
	if err := a.ensureParent(ctx, path); err != nil {
		return err
	}
	if err := os.WriteFile(path, content, os.FileMode(mode)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// AppendFile appends to a file, creating it when missing.
func (a *WorkspaceAdapter) AppendFile(ctx context.Context, path string, content []byte, mode uint32) error {
	if err := a.ensureParent(ctx, path); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, os.FileMode(mode))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func (a *WorkspaceAdapter) ensureParent(ctx context.Context, path string) error {
	return a.CreateDirectory(ctx, filepath.Dir(path), 0755)
}
