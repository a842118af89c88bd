package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes vault root")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrInvalidName  = errors.New("name must be a single path element")
)

// PathValidator provides secure path validation and file operations
// that are confined to the vault root using the os.Root API.
type PathValidator struct {
	root     *os.Root
	rootPath string
}

// New creates a new PathValidator for the vault root at the given path.
// The directory must already exist.
func New(rootPath string) (*PathValidator, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault root: %w", err)
	}

	return &PathValidator{
		root:     root,
		rootPath: absPath,
	}, nil
}

// Close releases resources held by the PathValidator.
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// RootPath returns the absolute vault root
func (pv *PathValidator) RootPath() string {
	return pv.rootPath
}

// ValidateAndNormalize validates a path relative to the vault root and
// returns it cleaned, with forward slashes. It rejects:
// - Empty paths
// - Absolute paths
// - Paths that escape the root (using ..)
// - Paths that are not local (filepath.IsLocal)
func (pv *PathValidator) ValidateAndNormalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(userPath) {
		if filepath.IsAbs(userPath) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	cleanPath := filepath.Clean(userPath)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, cleanPath)
	}

	return filepath.ToSlash(cleanPath), nil
}

// Resolve maps an absolute path inside the vault, or a path relative to the
// vault root, to its normalized relative form. The root itself resolves to ".".
func (pv *PathValidator) Resolve(p string) (string, error) {
	if p == "" {
		return "", ErrEmptyPath
	}
	if !filepath.IsAbs(p) {
		return pv.ValidateAndNormalize(p)
	}

	rel, err := filepath.Rel(pv.rootPath, filepath.Clean(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, p)
	}
	return pv.ValidateAndNormalize(rel)
}

// Abs returns the absolute path for a relative vault path
func (pv *PathValidator) Abs(rel string) string {
	return filepath.Join(pv.rootPath, filepath.FromSlash(rel))
}

// Contains reports whether p resolves inside the vault root
func (pv *PathValidator) Contains(p string) bool {
	_, err := pv.Resolve(p)
	return err == nil
}

// ValidateName checks that name is usable as a single directory entry
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyPath
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// MkdirInRoot creates a single directory inside the vault root.
func (pv *PathValidator) MkdirInRoot(path string, perm os.FileMode) error {
	rel, err := pv.Resolve(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Mkdir(filepath.FromSlash(rel), perm)
}

// MkdirAllInRoot creates a directory and any missing parents inside the vault root.
func (pv *PathValidator) MkdirAllInRoot(path string, perm os.FileMode) error {
	rel, err := pv.Resolve(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.MkdirAll(filepath.FromSlash(rel), perm)
}

// RemoveAllInRoot removes a file or directory tree inside the vault root.
// Removing the root itself is refused.
func (pv *PathValidator) RemoveAllInRoot(path string) error {
	rel, err := pv.Resolve(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if rel == "." {
		return fmt.Errorf("invalid path: refusing to remove vault root")
	}
	return pv.root.RemoveAll(filepath.FromSlash(rel))
}

// LstatInRoot stats a path inside the vault root without following a final symlink.
func (pv *PathValidator) LstatInRoot(path string) (os.FileInfo, error) {
	rel, err := pv.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Lstat(filepath.FromSlash(rel))
}

// StatInRoot stats a path inside the vault root.
func (pv *PathValidator) StatInRoot(path string) (os.FileInfo, error) {
	rel, err := pv.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return pv.root.Stat(filepath.FromSlash(rel))
}

// ReadDirInRoot lists a directory inside the vault root, sorted by name.
func (pv *PathValidator) ReadDirInRoot(path string) ([]fs.DirEntry, error) {
	rel, err := pv.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return fs.ReadDir(pv.root.FS(), rel)
}
