package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"
)

// jsonCodec reads HuJSON (JSON with comments and trailing commas) and writes
// indented standard JSON. Numbers decode as json.Number so integer keys keep
// their exact value when converted.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

// Unmarshal leaves v untouched for a blank block, matching yaml.v3 on an
// empty document.
func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("hujson: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.UseNumber()
	return dec.Decode(v)
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
