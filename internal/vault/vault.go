// Package vault opens a directory tree of notes and enumerates them.
package vault

import (
	"iter"

	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/note"
	"github.com/starford/vaultjoin/internal/storage"
)

// DefaultExtension is the file extension that marks a note.
const DefaultExtension = "md"

// Vault is a root directory of notes. It is immutable once opened.
type Vault struct {
	fs    *storage.FS
	codec codec.Codec
}

// Option configures Open.
type Option func(*options)

type options struct {
	ext   string
	codec codec.Codec
}

// WithExtension sets the note extension (default "md").
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithCodec sets the metadata codec (default YAML).
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// Open returns the vault rooted at root, which must be an existing directory.
func Open(root string, opts ...Option) (*Vault, error) {
	o := options{ext: DefaultExtension, codec: codec.YAML}
	for _, opt := range opts {
		opt(&o)
	}
	fs, err := storage.NewFS(root, o.ext)
	if err != nil {
		return nil, err
	}
	return &Vault{fs: fs, codec: o.codec}, nil
}

// Root returns the absolute vault directory.
func (v *Vault) Root() string { return v.fs.Root() }

// Codec returns the metadata codec notes in this vault use.
func (v *Vault) Codec() codec.Codec { return v.codec }

// Ext returns the note extension.
func (v *Vault) Ext() string { return v.fs.Ext() }

// Notes lazily yields a Ref for every note in the vault, together with any
// error the walk hit. Each range starts a fresh walk.
func (v *Vault) Notes() iter.Seq2[note.Ref, error] {
	return func(yield func(note.Ref, error) bool) {
		for p, err := range v.fs.Notes() {
			if err != nil {
				if !yield(note.Ref{}, err) {
					return
				}
				continue
			}
			if !yield(note.FromPathWithCodec(p, v.codec), nil) {
				return
			}
		}
	}
}

// Ref returns a Ref for a vault-relative path, rejecting paths outside the
// vault.
func (v *Vault) Ref(rel string) (note.Ref, error) {
	abs, err := v.Resolve(rel)
	if err != nil {
		return note.Ref{}, err
	}
	return note.FromPathWithCodec(abs, v.codec), nil
}

// Resolve turns a vault-relative path into an absolute one inside the vault.
func (v *Vault) Resolve(rel string) (string, error) {
	return v.fs.Resolve(rel)
}

// Rel returns an absolute path relative to the vault root.
func (v *Vault) Rel(p string) string {
	return v.fs.Rel(p)
}
