// Package ioutils provides file system utilities for tapmusic-collage.
//
// This package contains functions for:
//   - Refusing to overwrite existing paths
//   - Exclusive, atomic file writes
//   - Directory creation
//
// All functions that accept a context.Context respect cancellation,
// though file operations themselves may not be interruptible.
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// linkFunc is swapped in tests to simulate a failing publish step.
var linkFunc = os.Link

// ConflictError reports that something already occupies a destination path.
//
// Kind is "file", "dir", "symlink" or the mode type of any other node.
// ConflictError matches fs.ErrExist via errors.Is.
type ConflictError struct {
	Path string
	Kind string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists (%s)", e.Path, e.Kind)
}

// Is makes errors.Is(err, fs.ErrExist) hold.
func (e *ConflictError) Is(target error) bool {
	return target == fs.ErrExist
}

// CheckAvailable returns nil when nothing exists at path.
//
// The path is inspected with Lstat, so a symlink is reported as a conflict
// even when it dangles; the link target is never followed. Directories and
// special files are conflicts too.
//
// Example:
//
//	if err := CheckAvailable("/tmp/collage.jpg"); errors.Is(err, fs.ErrExist) {
//	    // refuse to continue
//	}
func CheckAvailable(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return &ConflictError{Path: path, Kind: describeMode(fi.Mode())}
}

func describeMode(m fs.FileMode) string {
	switch {
	case m.IsRegular():
		return "file"
	case m.IsDir():
		return "dir"
	case m&fs.ModeSymlink != 0:
		return "symlink"
	default:
		return m.Type().String()
	}
}

// WriteFileExclusive writes data to path, failing if path already exists.
//
// The data is first written and synced to a hidden temporary file in the
// same directory, which is then hard-linked to path. Linking fails when the
// name is taken, so an existing file is never replaced, even if it appeared
// after CheckAvailable. On filesystems without hard links the data is
// written to path opened with O_EXCL instead. The temporary file is always
// removed, so a failed call leaves nothing behind.
//
// The file is created with mode 0644.
//
// Example:
//
//	err := WriteFileExclusive(ctx, "/tmp/alice_7day_4x4.jpg", imageData)
func WriteFileExclusive(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil && runtime.GOOS != "windows" {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := linkFunc(tmpName, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return conflictAt(path)
		}
		// No hard links here (vfat, exFAT, some network mounts).
		if err := createExclusive(path, data); err != nil {
			return err
		}
	}

	syncDirBestEffort(dir)
	return nil
}

// createExclusive writes data straight to path with O_EXCL. A partially
// written file is removed again.
func createExclusive(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return conflictAt(path)
		}
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	return f.Close()
}

func conflictAt(path string) error {
	if fi, err := os.Lstat(path); err == nil {
		return &ConflictError{Path: path, Kind: describeMode(fi.Mode())}
	}
	return &ConflictError{Path: path, Kind: "file"}
}

func syncDirBestEffort(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/home/user/Pictures/collages")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
