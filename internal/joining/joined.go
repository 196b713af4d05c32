package joining

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/starford/vaultjoin/internal/apperr"
	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/note"
	"github.com/starford/vaultjoin/internal/storage"
)

// WriteOutcome reports whether a write created a note or replaced one.
type WriteOutcome int

const (
	Created WriteOutcome = iota
	Updated
)

func (o WriteOutcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return fmt.Sprintf("WriteOutcome(%d)", int(o))
}

// MarshalText renders the outcome as "created" or "updated".
func (o WriteOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses "created" or "updated".
func (o *WriteOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "created":
		*o = Created
	case "updated":
		*o = Updated
	default:
		return fmt.Errorf("unknown write outcome %q", text)
	}
	return nil
}

// JoinedNote is the freshly computed note for an object outside the vault.
// DefaultPath is where the note goes when no existing note carries Key.
type JoinedNote[K comparable, T any] struct {
	Key         K
	DefaultPath string
	Metadata    T
	Contents    string
}

// WriteOption configures a write.
type WriteOption func(*writeOptions)

type writeOptions struct {
	codec  codec.Codec
	atomic bool
}

// WithCodec serializes the metadata with c instead of YAML.
func WithCodec(c codec.Codec) WriteOption {
	return func(o *writeOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithAtomicWrite replaces the file through a temp file and rename instead of
// truncating it in place.
func WithAtomicWrite() WriteOption {
	return func(o *writeOptions) { o.atomic = true }
}

// Write stores the note. With an existing note the file at its path is
// replaced and the outcome is Updated; otherwise the note is written to
// DefaultPath, whose parent directory is created if needed, and the outcome is
// Created.
//
// The whole file is replaced: a fresh metadata block is written from Metadata
// and the previous frontmatter and body are discarded.
func (j *JoinedNote[K, T]) Write(existing *note.Ref, opts ...WriteOption) (WriteOutcome, error) {
	o := writeOptions{codec: codec.YAML}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		outcome WriteOutcome
		path    string
	)
	if existing != nil {
		outcome, path = Updated, existing.Path()
	} else {
		dir, _ := filepath.Split(j.DefaultPath)
		if dir == "" {
			return Created, fmt.Errorf("%w: invalid note location %q, lacks meaningful parent",
				apperr.ErrMalformedVault, j.DefaultPath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Created, fmt.Errorf("%w: mkdir %s: %w", apperr.ErrIO, dir, err)
		}
		outcome, path = Created, j.DefaultPath
	}

	slog.Debug("joining: writing note", slog.String("path", path), slog.String("outcome", outcome.String()))

	data, err := note.Render(o.codec, j.Metadata, j.Contents)
	if err != nil {
		return outcome, fmt.Errorf("%w: serialize %s: %w", apperr.ErrMetadata, path, err)
	}
	if err := storage.WriteFile(path, data, o.atomic); err != nil {
		return outcome, fmt.Errorf("%w: %w", apperr.ErrIO, err)
	}
	return outcome, nil
}

// WriteIndexed looks Key up in an index built by FindBy and writes over the
// matching note, or creates one at DefaultPath when there is none.
func (j *JoinedNote[K, T]) WriteIndexed(index map[K]note.Ref, opts ...WriteOption) (WriteOutcome, string, error) {
	if ref, ok := index[j.Key]; ok {
		outcome, err := j.Write(&ref, opts...)
		return outcome, ref.Path(), err
	}
	outcome, err := j.Write(nil, opts...)
	return outcome, j.DefaultPath, err
}

// DefaultPath builds dir/<slug>.<ext> from a human title, e.g.
// DefaultPath("people", "Freya Nord", "md") is "people/freya-nord.md".
func DefaultPath(dir, title, ext string) string {
	name := slug.Make(title)
	if name == "" {
		name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
	}
	return filepath.Join(dir, name+"."+strings.TrimPrefix(ext, "."))
}
