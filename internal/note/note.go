// Package note reads and writes individual vault notes: an optional metadata
// block delimited by "---" lines, followed by free-form body text.
package note

import (
	"fmt"
	"os"

	"github.com/starford/vaultjoin/internal/apperr"
	"github.com/starford/vaultjoin/internal/codec"
)

// Ref points at one note file. It holds no content: every accessor reads the
// file again, and the file is not required to exist until then.
type Ref struct {
	path  string
	codec codec.Codec
}

// FromPath returns a Ref whose metadata block is YAML.
func FromPath(path string) Ref {
	return Ref{path: path, codec: codec.YAML}
}

// FromPathWithCodec returns a Ref whose metadata block is decoded with c.
func FromPathWithCodec(path string, c codec.Codec) Ref {
	if c == nil {
		c = codec.YAML
	}
	return Ref{path: path, codec: c}
}

// Path returns the file location.
func (r Ref) Path() string { return r.path }

// Codec returns the codec used for the metadata block.
func (r Ref) Codec() codec.Codec {
	if r.codec == nil {
		return codec.YAML
	}
	return r.codec
}

func (r Ref) String() string { return r.path }

// RawContent returns the file content without interpreting any frontmatter.
func (r Ref) RawContent() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", apperr.ErrIO, r.path, err)
	}
	return string(data), nil
}

// Parts splits the note and decodes its metadata block into meta, which must
// be a pointer. found reports whether the note had a block at all; when it
// did not, meta is untouched and body is the entire file.
func (r Ref) Parts(meta any) (found bool, body string, err error) {
	content, err := r.RawContent()
	if err != nil {
		return false, "", err
	}
	block, body, opened, err := split(content)
	if err != nil {
		return false, "", fmt.Errorf("%s: %w", r.path, err)
	}
	if !opened {
		return false, body, nil
	}
	if err := r.Codec().Unmarshal([]byte(block), meta); err != nil {
		return false, "", fmt.Errorf("%w: %s: %w", apperr.ErrMetadata, r.path, err)
	}
	return true, body, nil
}

// Metadata decodes the metadata block into meta. A note without a block fails
// with apperr.ErrMissingMetadata.
func (r Ref) Metadata(meta any) error {
	found, _, err := r.Parts(meta)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s: %w", r.path, apperr.ErrMissingMetadata)
	}
	return nil
}

// Note is a fully parsed note.
type Note[T any] struct {
	Path     string
	Metadata T
	Content  string
}

// Parse reads ref into a Note. The metadata block is required.
func Parse[T any](ref Ref) (*Note[T], error) {
	n := &Note[T]{Path: ref.Path()}
	found, body, err := ref.Parts(&n.Metadata)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", ref.Path(), apperr.ErrMissingMetadata)
	}
	n.Content = body
	return n, nil
}

// Write replaces the file at n.Path with a fresh metadata block and n.Content.
func (n *Note[T]) Write(c codec.Codec) error {
	if c == nil {
		c = codec.YAML
	}
	data, err := Render(c, n.Metadata, n.Content)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", apperr.ErrMetadata, n.Path, err)
	}
	if err := os.WriteFile(n.Path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", apperr.ErrIO, n.Path, err)
	}
	return nil
}
