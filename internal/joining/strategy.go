package joining

import (
	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/note"
)

// Strategy extracts a key from a note's metadata. It is a best-effort filter:
// any failure to read, parse or convert means the note does not match.
type Strategy[K any] interface {
	Extract(ref note.Ref) (K, note.Ref, bool)
}

// Branded finds the key under a single metadata field.
type Branded[K any] struct {
	BrandKey string
}

// NewBranded returns a Branded strategy reading the key from brandKey.
func NewBranded[K any](brandKey string) Branded[K] {
	return Branded[K]{BrandKey: brandKey}
}

func (b Branded[K]) Extract(ref note.Ref) (K, note.Ref, bool) {
	var zero K
	fields, ok := mapping(ref)
	if !ok {
		return zero, ref, false
	}
	raw, ok := fields.Lookup(b.BrandKey)
	if !ok {
		return zero, ref, false
	}
	return convert[K](ref, raw)
}

// TypeAndKey only trusts the id field of notes whose discriminator field holds
// the expected note type. Use it when one vault mixes several kinds of domain
// notes that share an id field name.
type TypeAndKey[K any] struct {
	TypeKey  string
	NoteType string
	IDKey    string
}

// NewTypeAndKey returns a TypeAndKey strategy.
func NewTypeAndKey[K any](typeKey, noteType, idKey string) TypeAndKey[K] {
	return TypeAndKey[K]{TypeKey: typeKey, NoteType: noteType, IDKey: idKey}
}

func (s TypeAndKey[K]) Extract(ref note.Ref) (K, note.Ref, bool) {
	var zero K
	fields, ok := mapping(ref)
	if !ok {
		return zero, ref, false
	}
	noteType, ok := fields.String(s.TypeKey)
	if !ok || noteType != s.NoteType {
		return zero, ref, false
	}
	raw, ok := fields.Lookup(s.IDKey)
	if !ok {
		return zero, ref, false
	}
	return convert[K](ref, raw)
}

func mapping(ref note.Ref) (codec.Mapping, bool) {
	var fields codec.Mapping
	if err := ref.Metadata(&fields); err != nil {
		return nil, false
	}
	return fields, true
}

func convert[K any](ref note.Ref, raw any) (K, note.Ref, bool) {
	var key K
	if err := codec.Convert(ref.Codec(), raw, &key); err != nil {
		var zero K
		return zero, ref, false
	}
	return key, ref, true
}
