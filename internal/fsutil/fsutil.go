// Package fsutil provides the directory and file operations used by the
// generate and write steps, and the idempotent atomic write built on them.
package fsutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the set of filesystem operations the writer depends on.
// Every call honours ctx cancellation before touching the disk.
type FileSystem interface {
	EnsureDir(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Move(ctx context.Context, src, dst string, overwrite bool) error
	Remove(ctx context.Context, path string) error
}

// OS is the FileSystem backed by the os package.
type OS struct{}

var _ FileSystem = OS{}

// EnsureDir creates path and any missing parents.
func (OS) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

// Exists reports whether path exists and is a regular file.
func (OS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

func (OS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 - paths come from the manifest or trusted configuration
	return os.ReadFile(path)
}

func (OS) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Move renames src to dst. Without overwrite an existing dst is an error.
func (OS) Move(ctx context.Context, src, dst string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return fmt.Errorf("move %s: destination %s already exists", src, dst)
		}
	}
	return os.Rename(src, dst)
}

// Remove deletes path. A missing file is not an error.
func (OS) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// TempSuffix is appended to the destination path for the staging file.
const TempSuffix = ".tmp"

// AtomicWrite writes content to path through a sibling temporary file and a
// rename, so a partially written destination is never observable. When path
// already holds exactly content the write is skipped and false is returned.
func AtomicWrite(ctx context.Context, fsys FileSystem, path string, content []byte) (bool, error) {
	if err := fsys.EnsureDir(ctx, filepath.Dir(path)); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}

	exists, err := fsys.Exists(ctx, path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if exists {
		existing, err := fsys.ReadFile(ctx, path)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", path, err)
		}
		if bytes.Equal(existing, content) {
			return false, nil
		}
	}

	tmp := path + TempSuffix
	if err := fsys.WriteFile(ctx, tmp, content); err != nil {
		return false, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := fsys.Move(ctx, tmp, path, true); err != nil {
		return false, fmt.Errorf("move %s into place: %w", tmp, err)
	}
	return true, nil
}
