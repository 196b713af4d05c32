package storage

import (
	"bytes"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/starford/vaultjoin/internal/apperr"
)

// FS is a vault directory on the local file system.
type FS struct {
	root string // absolute path to vault directory
	ext  string
}

// NewFS creates a new FS rooted at the given directory, enumerating files with
// extension ext. The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, ext: strings.TrimPrefix(ext, ".")}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// Ext returns the note extension without its leading dot.
func (f *FS) Ext() string { return f.ext }

// Notes walks the whole vault. See Walk.
func (f *FS) Notes() iter.Seq2[string, error] {
	return Walk(f.root, f.ext)
}

// Resolve turns a vault-relative path into an absolute one and rejects any
// result that escapes the vault (directory traversal).
func (f *FS) Resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute paths not allowed: %s", apperr.ErrInvalidPath, rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("%w: path escapes vault root: %s", apperr.ErrInvalidPath, rel)
	}
	return abs, nil
}

// Rel returns p relative to the vault root, using forward slashes.
func (f *FS) Rel(p string) string {
	rel, err := filepath.Rel(f.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// WriteFile replaces the content of path. A plain write truncates the file in
// place; an atomic write goes through a temp file in the same directory and a
// rename, so readers never observe a partial note.
func WriteFile(path string, content []byte, atomicWrite bool) error {
	if atomicWrite {
		if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
			return fmt.Errorf("storage: atomic write %s: %w", path, err)
		}
		return nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	return nil
}
