package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type person struct {
	ID   int      `yaml:"id" json:"id"`
	Name string   `yaml:"name" json:"name"`
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

func TestRoundTrip(t *testing.T) {
	in := person{ID: 7, Name: "Freya", Tags: []string{"a", "b"}}
	for _, c := range []Codec{YAML, JSON} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var out person
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestJSON_ToleratesCommentsAndTrailingCommas(t *testing.T) {
	var m Mapping
	err := JSON.Unmarshal([]byte("{\n  // the id\n  \"id\": 12345678901234567,\n}"), &m)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	raw, ok := m.Lookup("id")
	if !ok {
		t.Fatal("id missing")
	}
	var id int64
	if err := Convert(JSON, raw, &id); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if id != 12345678901234567 {
		t.Errorf("id = %d", id)
	}
}

func TestMapping_LookupTreatsNullAsAbsent(t *testing.T) {
	var m Mapping
	if err := YAML.Unmarshal([]byte("id:\ntype: person\n"), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := m.Lookup("id"); ok {
		t.Error("null field should be absent")
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Error("missing field should be absent")
	}
	if s, ok := m.String("type"); !ok || s != "person" {
		t.Errorf("String(type) = %q, %v", s, ok)
	}
}

func TestMapping_StringRejectsNonStrings(t *testing.T) {
	m := Mapping{"type": 5}
	if _, ok := m.String("type"); ok {
		t.Error("integer should not be reported as a string")
	}
}

func TestConvert_RejectsIncompatibleValue(t *testing.T) {
	var id int
	if err := Convert(YAML, "not a number", &id); err == nil {
		t.Error("expected conversion error")
	}
}

func TestConvert_ScalarIntoStringUnderEveryCodec(t *testing.T) {
	jsonFields := Mapping{}
	if err := JSON.Unmarshal([]byte(`{"id": 7, "ok": true, "ratio": 0.5}`), &jsonFields); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		codec Codec
		value any
		want  string
	}{
		{JSON, jsonFields["id"], "7"},
		{JSON, jsonFields["ok"], "true"},
		{JSON, jsonFields["ratio"], "0.5"},
		{JSON, "plain", "plain"},
		{YAML, 7, "7"},
		{YAML, int64(12), "12"},
	}
	for _, c := range cases {
		var got string
		if err := Convert(c.codec, c.value, &got); err != nil {
			t.Errorf("%s %v: %v", c.codec.Name(), c.value, err)
			continue
		}
		if got != c.want {
			t.Errorf("%s %v = %q, want %q", c.codec.Name(), c.value, got, c.want)
		}
	}

	// Non-scalars still go through the codec and fail for a string target.
	var s string
	if err := Convert(JSON, map[string]any{"a": 1}, &s); err == nil {
		t.Error("expected error converting a mapping into a string")
	}
}

func TestUnmarshal_BlankBlock(t *testing.T) {
	for _, c := range []Codec{YAML, JSON} {
		t.Run(c.Name(), func(t *testing.T) {
			var m Mapping
			if err := c.Unmarshal([]byte(" \n  \n"), &m); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if m != nil {
				t.Errorf("mapping = %v, want nil", m)
			}
		})
	}
}

func TestByName(t *testing.T) {
	cases := map[string]string{"": "yaml", "YAML": "yaml", "yml": "yaml", "json": "json", "jsonc": "json"}
	for in, want := range cases {
		c, err := ByName(in)
		if err != nil {
			t.Fatalf("ByName(%q): %v", in, err)
		}
		if c.Name() != want {
			t.Errorf("ByName(%q) = %s, want %s", in, c.Name(), want)
		}
	}
	if _, err := ByName("toml"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestForPath(t *testing.T) {
	c, err := ForPath("joins/manifest.json")
	if err != nil || c.Name() != "json" {
		t.Errorf("ForPath json = %v, %v", c, err)
	}
	if _, err := ForPath("manifest"); err == nil {
		t.Error("expected error without extension")
	}
}

func TestPlain(t *testing.T) {
	var m map[string]any
	if err := JSON.Unmarshal([]byte(`{"id": 7, "score": 1.5, "nested": {"n": 2}, "list": [3]}`), &m); err != nil {
		t.Fatal(err)
	}
	Plain(m)
	want := map[string]any{
		"id":     int64(7),
		"score":  1.5,
		"nested": map[string]any{"n": int64(2)},
		"list":   []any{int64(3)},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Plain mismatch (-want +got):\n%s", diff)
	}
}
