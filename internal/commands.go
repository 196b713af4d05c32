package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joinservice"
	"github.com/starford/vaultjoin/internal/note"
)

// One-shot commands print results to w and keep logs on stderr.
func oneShot(opts []Option) (*app, error) {
	return newApp(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
}

// PrintIndex writes "key<TAB>path" for every note the strategy finds.
func PrintIndex(ctx context.Context, w io.Writer, strategy string, opts ...Option) error {
	a, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.service.Index(ctx, strategy)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", e.Key, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// PrintNote parses the note at path (any filesystem path) with the configured
// codec and writes its metadata as JSON followed by the body.
func PrintNote(w io.Writer, path string, cfg *Config) error {
	c, err := codec.ByName(cfg.Vault.Codec)
	if err != nil {
		return err
	}
	var meta codec.Mapping
	found, body, err := note.FromPathWithCodec(path, c).Parts(&meta)
	if err != nil {
		return err
	}
	if !found {
		meta = nil
	} else if meta == nil {
		meta = codec.Mapping{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(codec.Plain(meta)); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, body)
	return err
}

// ApplyManifest joins every entry of the manifest file and writes
// "outcome<TAB>key<TAB>path" per completed write. Entries written before a
// failure are still printed.
func ApplyManifest(ctx context.Context, w io.Writer, strategy, manifestPath string, opts ...Option) error {
	m, err := joinservice.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	a, err := oneShot(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	results, joinErr := a.service.JoinAll(ctx, strategy, m.Joins)
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", r.Outcome, r.Key, r.Path); err != nil {
			return err
		}
	}
	return joinErr
}
