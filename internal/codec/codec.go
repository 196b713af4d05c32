// Package codec serializes note metadata blocks to and from text.
//
// The note and joining packages only ever see the Codec interface, so the
// metadata format is a configuration choice: YAML by default, JSON (with
// comments and trailing commas tolerated) as an alternative.
package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
)

// Codec parses a block of text into a caller-supplied value and serializes
// values back to text.
type Codec interface {
	Name() string
	Unmarshal(data []byte, v any) error
	Marshal(v any) ([]byte, error)
}

// Built-in codecs.
var (
	YAML Codec = yamlCodec{}
	JSON Codec = jsonCodec{}
)

// ByName returns the codec registered under name ("yaml" or "json").
func ByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yaml", "yml":
		return YAML, nil
	case "json", "hujson", "jsonc":
		return JSON, nil
	}
	return nil, fmt.Errorf("codec: unknown codec %q", name)
}

// ForPath picks a codec from a file extension.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("codec: no extension on %s", path)
	}
	return ByName(ext)
}

// Mapping is the untyped view of a metadata block, used for field lookups
// before a value is converted to its final type.
type Mapping map[string]any

// Lookup returns the value stored under field. A field that is present but
// null is reported as absent.
func (m Mapping) Lookup(field string) (any, bool) {
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value under field when it is a string.
func (m Mapping) String(field string) (string, bool) {
	v, ok := m.Lookup(field)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Convert turns an untyped value taken from a Mapping into target by
// round-tripping it through c. A scalar converted into a string takes its
// text form under every codec, as yaml.v3 does natively.
func Convert(c Codec, value any, target any) error {
	if text, ok := scalarText(value); ok {
		if rv := reflect.ValueOf(target); rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.String {
			rv.Elem().SetString(text)
			return nil
		}
	}
	data, err := c.Marshal(value)
	if err != nil {
		return fmt.Errorf("codec: convert: %w", err)
	}
	if err := c.Unmarshal(data, target); err != nil {
		return fmt.Errorf("codec: convert: %w", err)
	}
	return nil
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	}
	return "", false
}

// Plain rewrites json.Number values inside v (recursively through maps and
// slices) into int64 or float64, so metadata decoded by the JSON codec
// re-encodes as numbers under any codec.
func Plain(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = Plain(e)
		}
		return t
	case Mapping:
		for k, e := range t {
			t[k] = Plain(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = Plain(e)
		}
		return t
	}
	return v
}
