// Package testutil provides shared test helpers for setting up vaults and journals.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/vaultjoin/internal/journal"
	"github.com/starford/vaultjoin/internal/vault"
)

// WriteFiles creates each vault-relative file with its content under root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestVault creates a temporary vault holding files.
func TestVault(t *testing.T, files map[string]string, opts ...vault.Option) *vault.Vault {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	v, err := vault.Open(dir, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// TestJournal creates a temporary SQLite journal that is automatically closed.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ReadFile returns the content of a vault-relative file.
func ReadFile(t *testing.T, v *vault.Vault, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(v.Root(), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
