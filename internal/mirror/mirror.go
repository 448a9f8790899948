// Package mirror maps site URL suffixes onto a local directory tree and
// writes fetched content there.
package mirror

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot is the mirror directory used when none is configured.
const DefaultRoot = "ripped"

// File and directory permissions for mirrored content.
const (
	dirPerm  = 0750
	filePerm = 0644
)

var (
	// ErrEmptyRoot is returned by New when no mirror directory is given.
	ErrEmptyRoot = errors.New("mirror root must not be empty")

	// ErrUnsafeRoot is returned by New for a root that Reset must never
	// delete: the working directory, its parent, or a filesystem root.
	ErrUnsafeRoot = errors.New("refusing to use this directory as mirror root")

	// ErrUnsafePath is returned by Write for a suffix with a ".", ".." or
	// empty segment. Such a suffix either resolves outside the mirror
	// directory or names the same file as a different suffix.
	ErrUnsafePath = errors.New("suffix does not map to a unique file in the mirror directory")
)

// Mirror writes suffix-addressed content below a root directory.
// The suffix is used verbatim as the relative path. Write accepts only
// suffixes whose segments are all non-empty and not "." or "..", so two
// distinct accepted suffixes always land on distinct files.
type Mirror struct {
	root string
}

// New returns a Mirror rooted at root. The directory is not created;
// call Reset or rely on Write creating parents on demand.
func New(root string) (*Mirror, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	clean := filepath.Clean(root)
	if clean == "." || clean == ".." || filepath.Dir(clean) == clean {
		return nil, fmt.Errorf("%w: %s", ErrUnsafeRoot, root)
	}
	return &Mirror{root: root}, nil
}

// Root returns the mirror directory.
func (m *Mirror) Root() string {
	return m.root
}

// Path returns the local file path for suffix.
// A leading "/" is consumed; any other suffix is appended as is.
func (m *Mirror) Path(suffix string) string {
	rel := strings.TrimPrefix(suffix, "/")
	return m.root + string(filepath.Separator) + filepath.FromSlash(rel)
}

// Validate returns ErrUnsafePath if Write would refuse suffix.
func (m *Mirror) Validate(suffix string) error {
	if unsafeSuffix(suffix) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, suffix)
	}
	return nil
}

// Write stores data at the path for suffix, creating parent directories
// and truncating any existing file.
func (m *Mirror) Write(suffix string, data []byte) error {
	if err := m.Validate(suffix); err != nil {
		return err
	}
	path := m.Path(suffix)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", suffix, err)
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", suffix, err)
	}
	return nil
}

// Reset removes the mirror directory and everything in it, then creates it
// again empty. Every run starts from a clean tree.
func (m *Mirror) Reset() error {
	if err := os.RemoveAll(m.root); err != nil {
		return fmt.Errorf("failed to remove mirror directory %s: %w", m.root, err)
	}
	if err := os.MkdirAll(m.root, dirPerm); err != nil {
		return fmt.Errorf("failed to create mirror directory %s: %w", m.root, err)
	}
	return nil
}

// unsafeSuffix reports whether suffix is empty, has a "." or ".." segment,
// or has an empty segment anywhere but before the leading "/".
func unsafeSuffix(suffix string) bool {
	if suffix == "" {
		return true
	}
	segments := strings.Split(filepath.ToSlash(suffix), "/")
	for i, segment := range segments {
		switch {
		case segment == "." || segment == "..":
			return true
		case segment == "" && i > 0:
			return true
		}
	}
	return false
}
