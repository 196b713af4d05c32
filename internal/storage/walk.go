// Package storage provides the vault's file-system access: note enumeration,
// vault-confined path resolution and note writes.
package storage

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// Walk lazily yields every note file under root, recursively. Entries whose
// name starts with "." are skipped (directories with their whole subtree), as
// are files whose extension is not ext. The root itself is never filtered.
//
// Errors hit while walking are yielded alongside the offending path and the
// walk continues; a failing directory is not descended into. Every range over
// the returned sequence performs a fresh walk.
func Walk(root, ext string) iter.Seq2[string, error] {
	suffix := "." + strings.TrimPrefix(ext, ".")
	return func(yield func(string, error) bool) {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(p, err) {
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if p != root && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || filepath.Ext(d.Name()) != suffix {
				return nil
			}
			if !yield(p, nil) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
