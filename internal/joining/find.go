// Package joining associates vault notes with objects of an external domain
// model: strategies pull a key out of note metadata, FindBy indexes a vault by
// that key, and JoinedNote writes the freshly computed note for a key either
// over the existing file or at a default location.
package joining

import (
	"log/slog"

	"github.com/starford/vaultjoin/internal/note"
	"github.com/starford/vaultjoin/internal/vault"
)

// FindBy scans the whole vault and maps every key the strategy extracts to
// its note. Walk errors and non-matching notes are dropped.
//
// When several notes yield the same key the one enumerated last wins. The
// enumeration order is the directory walk's, so a collision is an ambiguity
// the caller should avoid; FindDuplicates reports them.
func FindBy[K comparable](v *vault.Vault, s Strategy[K]) map[K]note.Ref {
	out := make(map[K]note.Ref)
	for ref, err := range v.Notes() {
		if err != nil {
			continue
		}
		key, ref, ok := s.Extract(ref)
		if !ok {
			continue
		}
		if prev, dup := out[key]; dup {
			slog.Debug("joining: duplicate key, keeping later note",
				slog.Any("key", key),
				slog.String("dropped", prev.Path()),
				slog.String("kept", ref.Path()))
		}
		out[key] = ref
	}
	return out
}

// FindDuplicates returns every key that more than one note produced, with all
// of those notes in enumeration order.
func FindDuplicates[K comparable](v *vault.Vault, s Strategy[K]) map[K][]note.Ref {
	all := make(map[K][]note.Ref)
	for ref, err := range v.Notes() {
		if err != nil {
			continue
		}
		if key, ref, ok := s.Extract(ref); ok {
			all[key] = append(all[key], ref)
		}
	}
	for k, refs := range all {
		if len(refs) < 2 {
			delete(all, k)
		}
	}
	return all
}
