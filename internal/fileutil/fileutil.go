// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrNameEmpty         = errors.New("file name cannot be empty")
	ErrNamePathTraversal = errors.New("file name contains path separator or null byte")
	ErrWorkspaceClosed   = errors.New("workspace already removed")
)

// filePermissions restricts workspace files to the current user.
const filePermissions = 0o600

// Workspace is a private temporary directory scoped to one conversion.
// Every artifact of the conversion lives inside it and Close removes it.
// A Workspace is not safe for concurrent use.
type Workspace struct {
	dir    string
	closed bool
}

// NewWorkspace creates a fresh directory under parent (os.TempDir when
// empty) named with prefix and a random suffix.
func NewWorkspace(parent, prefix string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of name inside the workspace.
// name must be a bare file name.
func (w *Workspace) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(w.dir, name), nil
}

// WriteFile stores data as name inside the workspace and returns its path.
func (w *Workspace) WriteFile(name string, data []byte) (string, error) {
	if w.closed {
		return "", ErrWorkspaceClosed
	}
	path, err := w.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// Close removes the workspace and everything in it. It is safe to call
// more than once; only the first call touches the filesystem.
func (w *Workspace) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return os.RemoveAll(w.dir)
}

// ValidateName checks that name is safe to join onto a directory.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameEmpty
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrNamePathTraversal, name)
	}
	return nil
}

// Stem returns the base name of path without its extension.
// "docs/report.md" -> "report".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "work" -> false (name)
//   - "./work.yaml" -> true (relative path)
//   - "/etc/mdconv/work.yaml" -> true (absolute)
//   - "C:\config\work.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
