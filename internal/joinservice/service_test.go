package joinservice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/vaultjoin/internal/apperr"
	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joining"
	"github.com/starford/vaultjoin/internal/journal"
	"github.com/starford/vaultjoin/internal/testutil"
	"github.com/starford/vaultjoin/internal/vault"
)

func strategies() map[string]joining.Strategy[string] {
	return map[string]joining.Strategy[string]{
		"id":     joining.NewBranded[string]("id"),
		"people": joining.NewTypeAndKey[string]("type", "person", "id"),
	}
}

func newService(t *testing.T, files map[string]string) (*Service, *journal.DB) {
	t.Helper()
	v := testutil.TestVault(t, files)
	j := testutil.TestJournal(t)
	return New(v, strategies(), WithJournal(j)), j
}

func TestStrategies(t *testing.T) {
	svc, _ := newService(t, nil)
	assert.Equal(t, []string{"id", "people"}, svc.Strategies())
}

func TestIndex(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"a.md":          "---\nid: 7\n---\nhello",
		"b.md":          "no frontmatter at all",
		"people/f.md":   "---\ntype: person\nid: 10\n---\n",
		"projects/p.md": "---\ntype: project\nid: 11\n---\n",
	})

	entries, err := svc.Index(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, []IndexEntry{
		{Key: "10", Path: "people/f.md"},
		{Key: "11", Path: "projects/p.md"},
		{Key: "7", Path: "a.md"},
	}, entries)

	people, err := svc.Index(context.Background(), "people")
	require.NoError(t, err)
	assert.Equal(t, []IndexEntry{{Key: "10", Path: "people/f.md"}}, people)

	_, err = svc.Index(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrUnknownStrategy)
}

func TestDuplicates(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"a.md":     "---\nid: 1\n---\n",
		"sub/b.md": "---\nid: 1\n---\n",
	})
	dups, err := svc.Duplicates(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"1": {"a.md", "sub/b.md"}}, dups)
}

func TestReadNote(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"a.md": "---\nid: 7\ntitle: Hello\n---\nbody",
		"b.md": "plain",
		"u.md": "---\nid: 1\n",
	})
	ctx := context.Background()

	d, err := svc.ReadNote(ctx, "a.md")
	require.NoError(t, err)
	assert.True(t, d.HasMetadata)
	assert.Equal(t, "Hello", d.Metadata["title"])
	assert.Equal(t, "body", d.Body)

	d, err = svc.ReadNote(ctx, "b.md")
	require.NoError(t, err)
	assert.False(t, d.HasMetadata)
	assert.Nil(t, d.Metadata)
	assert.Equal(t, "plain", d.Body)

	_, err = svc.ReadNote(ctx, "u.md")
	assert.ErrorIs(t, err, apperr.ErrUnclosedMetadata)

	_, err = svc.ReadNote(ctx, "missing.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.ReadNote(ctx, "../escape.md")
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestJoin_UpdatesExistingNote(t *testing.T) {
	svc, j := newService(t, map[string]string{
		"a.md": "---\nid: 7\nold: field\n---\nhello",
	})

	res, err := svc.Join(context.Background(), "id", JoinRequest{
		Key:         "7",
		DefaultPath: "people/7.md",
		Metadata:    map[string]any{"id": 7, "name": "Freya"},
		Contents:    "fresh body",
	})
	require.NoError(t, err)
	assert.Equal(t, joining.Updated, res.Outcome)
	assert.Equal(t, "a.md", res.Path)
	assert.Equal(t, "---\nid: 7\nname: Freya\n---\nfresh body", testutil.ReadFile(t, svc.Vault(), "a.md"))

	_, statErr := os.Stat(filepath.Join(svc.Vault().Root(), "people"))
	assert.True(t, os.IsNotExist(statErr), "default location must not be created")

	entries, err := j.Find(journal.Filter{Key: "7"}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "updated", entries[0].Outcome)
	assert.Equal(t, "a.md", entries[0].Path)
	assert.NotEmpty(t, entries[0].Checksum)
}

func TestJoin_CreatesFromTitle(t *testing.T) {
	svc, _ := newService(t, nil)

	res, err := svc.Join(context.Background(), "id", JoinRequest{
		Key:      "42",
		Dir:      "people",
		Title:    "Freya Nord",
		Metadata: map[string]any{"id": 42},
		Contents: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, joining.Created, res.Outcome)
	assert.Equal(t, "people/freya-nord.md", res.Path)
	assert.Equal(t, "---\nid: 42\n---\nhi", testutil.ReadFile(t, svc.Vault(), "people/freya-nord.md"))
}

func TestJoinAll_SameKeyTwiceUpdatesSecondTime(t *testing.T) {
	svc, _ := newService(t, nil)
	reqs := []JoinRequest{
		{Key: "1", DefaultPath: "n/1.md", Metadata: map[string]any{"id": 1}, Contents: "first"},
		{Key: "1", DefaultPath: "n/other.md", Metadata: map[string]any{"id": 1}, Contents: "second"},
	}
	results, err := svc.JoinAll(context.Background(), "id", reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, joining.Created, results[0].Outcome)
	assert.Equal(t, joining.Updated, results[1].Outcome)
	assert.Equal(t, "n/1.md", results[1].Path)
	assert.Equal(t, "---\nid: 1\n---\nsecond", testutil.ReadFile(t, svc.Vault(), "n/1.md"))
}

func TestJoinAll_StopsAtFirstFailure(t *testing.T) {
	svc, _ := newService(t, nil)
	reqs := []JoinRequest{
		{Key: "1", DefaultPath: "n/1.md"},
		{Key: "2", DefaultPath: "../outside.md"},
		{Key: "3", DefaultPath: "n/3.md"},
	}
	results, err := svc.JoinAll(context.Background(), "id", reqs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidPath))
	assert.Len(t, results, 1)
	_, statErr := os.Stat(filepath.Join(svc.Vault().Root(), "n", "3.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestJoin_RequiresKeyAndLocation(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Join(context.Background(), "id", JoinRequest{DefaultPath: "n/1.md"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
	_, err = svc.Join(context.Background(), "id", JoinRequest{Key: "1"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestJoin_CancelledContext(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Join(ctx, "id", JoinRequest{Key: "1", DefaultPath: "n/1.md"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHistory(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	_, err := svc.Join(ctx, "id", JoinRequest{Key: "1", DefaultPath: "n/1.md", Metadata: map[string]any{"id": 1}})
	require.NoError(t, err)
	_, err = svc.Join(ctx, "id", JoinRequest{Key: "2", DefaultPath: "n/2.md", Metadata: map[string]any{"id": 2}})
	require.NoError(t, err)

	all, err := svc.History(ctx, "", "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[0].Key)

	one, err := svc.History(ctx, "", "1", 10)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "created", one[0].Outcome)
}

func TestHistory_NoJournal(t *testing.T) {
	svc := New(testutil.TestVault(t, nil), strategies())
	entries, err := svc.History(context.Background(), "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "joins.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`joins:
  - key: "7"
    default_path: people/7.md
    metadata:
      id: 7
    contents: hello
  - key: "8"
    dir: people
    title: Sif
`), 0o644))

	m, err := LoadManifest(yamlPath)
	require.NoError(t, err)
	require.Len(t, m.Joins, 2)
	assert.Equal(t, "people/7.md", m.Joins[0].DefaultPath)
	assert.Equal(t, 7, m.Joins[0].Metadata["id"])
	assert.Equal(t, "Sif", m.Joins[1].Title)

	jsonPath := filepath.Join(dir, "joins.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
  // batch
  "joins": [{"key": "9", "default_path": "p/9.md", "metadata": {"id": 9}},],
}`), 0o644))
	m, err = LoadManifest(jsonPath)
	require.NoError(t, err)
	require.Len(t, m.Joins, 1)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("joins:\n  - default_path: x/y.md\n"), 0o644))
	_, err = LoadManifest(badPath)
	assert.Error(t, err)
}

func TestJoin_JSONManifestNumbersStayNumbers(t *testing.T) {
	svc, _ := newService(t, nil)
	dir := t.TempDir()
	p := filepath.Join(dir, "joins.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"joins": [{"key": "9", "default_path": "p/9.md", "metadata": {"id": 9}}]}`), 0o644))
	m, err := LoadManifest(p)
	require.NoError(t, err)

	_, err = svc.JoinAll(context.Background(), "id", m.Joins)
	require.NoError(t, err)
	assert.Equal(t, "---\nid: 9\n---\n", testutil.ReadFile(t, svc.Vault(), "p/9.md"))
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) NoteJoined(strategy, key, path, outcome string) {
	n.events = append(n.events, strategy+" "+key+" "+path+" "+outcome)
}

func TestJoin_NotifiesEveryWrite(t *testing.T) {
	n := &recordingNotifier{}
	v := testutil.TestVault(t, map[string]string{"a.md": "---\nid: 1\n---\n"})
	svc := New(v, strategies(), WithNotifier(n))

	_, err := svc.JoinAll(context.Background(), "id", []JoinRequest{
		{Key: "1", DefaultPath: "x.md", Metadata: map[string]any{"id": 1}},
		{Key: "2", DefaultPath: "b.md", Metadata: map[string]any{"id": 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id 1 a.md updated", "id 2 b.md created"}, n.events)
}

func TestJoin_JSONVaultNumericKeyUpdatesExisting(t *testing.T) {
	v := testutil.TestVault(t, map[string]string{
		"a.md": "---\n{\"id\": 7}\n---\nhello",
	}, vault.WithCodec(codec.JSON))
	svc := New(v, strategies())

	entries, err := svc.Index(context.Background(), "id")
	require.NoError(t, err)
	assert.Equal(t, []IndexEntry{{Key: "7", Path: "a.md"}}, entries)

	res, err := svc.Join(context.Background(), "id", JoinRequest{
		Key:         "7",
		DefaultPath: "people/7.md",
		Metadata:    map[string]any{"id": 7},
		Contents:    "again",
	})
	require.NoError(t, err)
	assert.Equal(t, joining.Updated, res.Outcome)
	assert.Equal(t, "a.md", res.Path)
	assert.Equal(t, "---\n{\n  \"id\": 7\n}\n---\nagain", testutil.ReadFile(t, v, "a.md"))

	_, statErr := os.Stat(filepath.Join(v.Root(), "people"))
	assert.True(t, os.IsNotExist(statErr), "no second copy at the default path")
}

func TestJoin_UpdateIgnoresDefaultPath(t *testing.T) {
	svc, _ := newService(t, map[string]string{"a.md": "---\nid: 1\n---\n"})

	// Neither an escaping default path nor a missing one matters for an update.
	res, err := svc.Join(context.Background(), "id", JoinRequest{
		Key: "1", DefaultPath: "../outside.md", Metadata: map[string]any{"id": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, joining.Updated, res.Outcome)

	res, err = svc.Join(context.Background(), "id", JoinRequest{Key: "1", Metadata: map[string]any{"id": 1}})
	require.NoError(t, err)
	assert.Equal(t, "a.md", res.Path)

	// A new key still needs a valid location.
	_, err = svc.Join(context.Background(), "id", JoinRequest{Key: "2", DefaultPath: "../outside.md"})
	assert.ErrorIs(t, err, apperr.ErrInvalidPath)
}

func TestHistory_SeparatesStrategies(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	_, err := svc.Join(ctx, "id", JoinRequest{Key: "7", DefaultPath: "n/7.md", Metadata: map[string]any{"id": 7}})
	require.NoError(t, err)
	_, err = svc.Join(ctx, "people", JoinRequest{
		Key: "7", DefaultPath: "people/7.md", Metadata: map[string]any{"type": "person", "id": 7},
	})
	require.NoError(t, err)

	both, err := svc.History(ctx, "", "7", 10)
	require.NoError(t, err)
	assert.Len(t, both, 2)

	people, err := svc.History(ctx, "people", "7", 10)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "people/7.md", people[0].Path)
}
