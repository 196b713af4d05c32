// Package joinservice coordinates the vault, the configured join strategies and
// the write journal for the CLI, HTTP and MCP front ends.
package joinservice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/starford/vaultjoin/internal/apperr"
	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joining"
	"github.com/starford/vaultjoin/internal/journal"
	"github.com/starford/vaultjoin/internal/note"
	"github.com/starford/vaultjoin/internal/vault"
)

// IndexEntry is one key found in the vault.
type IndexEntry struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// NoteDetail is a parsed note.
type NoteDetail struct {
	Path        string        `json:"path"`
	HasMetadata bool          `json:"has_metadata"`
	Metadata    codec.Mapping `json:"metadata,omitempty"`
	Body        string        `json:"body"`
}

// JoinRequest describes the note that should exist for one domain object.
// When DefaultPath is empty it is derived from Dir and Title.
type JoinRequest struct {
	Key         string         `json:"key" yaml:"key"`
	DefaultPath string         `json:"default_path,omitempty" yaml:"default_path,omitempty"`
	Dir         string         `json:"dir,omitempty" yaml:"dir,omitempty"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Metadata    map[string]any `json:"metadata" yaml:"metadata"`
	Contents    string         `json:"contents" yaml:"contents"`
}

// JoinResult is the outcome of one join.
type JoinResult struct {
	Key     string               `json:"key"`
	Path    string               `json:"path"`
	Outcome joining.WriteOutcome `json:"outcome"`
}

// Notifier is told about every completed write.
type Notifier interface {
	NoteJoined(strategy, key, path, outcome string)
}

// Service joins domain objects to vault notes.
type Service struct {
	vault      *vault.Vault
	strategies map[string]joining.Strategy[string]
	journal    journal.Recorder
	notifier   Notifier
	atomic     bool
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithJournal records every write in j.
func WithJournal(j journal.Recorder) Option {
	return func(s *Service) { s.journal = j }
}

// WithNotifier reports every completed write to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithAtomicWrites makes note writes go through a temp file and rename.
func WithAtomicWrites(enabled bool) Option {
	return func(s *Service) { s.atomic = enabled }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service over v with the named strategies.
func New(v *vault.Vault, strategies map[string]joining.Strategy[string], opts ...Option) *Service {
	s := &Service{
		vault:      v,
		strategies: strategies,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vault returns the underlying vault.
func (s *Service) Vault() *vault.Vault { return s.vault }

// Strategies returns the configured strategy names, sorted.
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Service) strategy(name string) (joining.Strategy[string], error) {
	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnknownStrategy, name)
	}
	return st, nil
}

// Index scans the vault with the named strategy. Entries are sorted by key and
// paths are vault-relative.
func (s *Service) Index(ctx context.Context, strategy string) ([]IndexEntry, error) {
	st, err := s.strategy(strategy)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := joining.FindBy(s.vault, st)
	out := make([]IndexEntry, 0, len(idx))
	for k, ref := range idx {
		out = append(out, IndexEntry{Key: k, Path: s.vault.Rel(ref.Path())})
	}
	slices.SortFunc(out, func(a, b IndexEntry) int { return cmp.Compare(a.Key, b.Key) })
	s.logger.Debug("index built", slog.String("strategy", strategy), slog.Int("notes", len(out)))
	return out, nil
}

// Duplicates reports keys that more than one note carries under strategy.
func (s *Service) Duplicates(_ context.Context, strategy string) (map[string][]string, error) {
	st, err := s.strategy(strategy)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for k, refs := range joining.FindDuplicates(s.vault, st) {
		for _, ref := range refs {
			out[k] = append(out[k], s.vault.Rel(ref.Path()))
		}
	}
	return out, nil
}

// ReadNote parses the note at a vault-relative path.
func (s *Service) ReadNote(_ context.Context, rel string) (*NoteDetail, error) {
	ref, err := s.vault.Ref(rel)
	if err != nil {
		return nil, err
	}
	var fields codec.Mapping
	found, body, err := ref.Parts(&fields)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, rel)
		}
		return nil, err
	}
	d := &NoteDetail{Path: s.vault.Rel(ref.Path()), HasMetadata: found, Body: body}
	if found {
		d.Metadata = fields
		if d.Metadata == nil {
			d.Metadata = codec.Mapping{}
		}
	}
	return d, nil
}

// Join writes the note for a single request.
func (s *Service) Join(ctx context.Context, strategy string, req JoinRequest) (*JoinResult, error) {
	results, err := s.JoinAll(ctx, strategy, []JoinRequest{req})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// JoinAll scans the vault once and writes the note for every request in
// order. It stops at the first failure and returns the results of the writes
// that completed before it.
func (s *Service) JoinAll(ctx context.Context, strategy string, reqs []JoinRequest) ([]JoinResult, error) {
	st, err := s.strategy(strategy)
	if err != nil {
		return nil, err
	}
	idx := joining.FindBy(s.vault, st)

	opts := []joining.WriteOption{joining.WithCodec(s.vault.Codec())}
	if s.atomic {
		opts = append(opts, joining.WithAtomicWrite())
	}

	results := make([]JoinResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.join(strategy, idx, req, opts)
		if err != nil {
			return results, fmt.Errorf("join %q: %w", req.Key, err)
		}
		results = append(results, *res)
	}
	return results, nil
}

func (s *Service) join(strategy string, idx map[string]note.Ref, req JoinRequest, opts []joining.WriteOption) (*JoinResult, error) {
	if req.Key == "" {
		return nil, fmt.Errorf("%w: empty key", apperr.ErrInvalidPath)
	}
	// The default path only matters when no note carries the key yet.
	var defaultPath string
	if _, exists := idx[req.Key]; !exists {
		p, err := s.resolveDefaultPath(req)
		if err != nil {
			return nil, err
		}
		defaultPath = p
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	codec.Plain(metadata)
	jn := joining.JoinedNote[string, map[string]any]{
		Key:         req.Key,
		DefaultPath: defaultPath,
		Metadata:    metadata,
		Contents:    req.Contents,
	}
	outcome, path, err := jn.WriteIndexed(idx, opts...)
	if err != nil {
		return nil, err
	}
	idx[req.Key] = note.FromPathWithCodec(path, s.vault.Codec())

	res := &JoinResult{Key: req.Key, Path: s.vault.Rel(path), Outcome: outcome}
	s.logger.Info("note joined",
		slog.String("strategy", strategy),
		slog.String("key", res.Key),
		slog.String("path", res.Path),
		slog.String("outcome", outcome.String()))
	s.record(strategy, res, path)
	if s.notifier != nil {
		s.notifier.NoteJoined(strategy, res.Key, res.Path, outcome.String())
	}
	return res, nil
}

func (s *Service) resolveDefaultPath(req JoinRequest) (string, error) {
	rel := req.DefaultPath
	if rel == "" {
		if req.Title == "" {
			return "", fmt.Errorf("%w: default_path or title required", apperr.ErrInvalidPath)
		}
		rel = joining.DefaultPath(req.Dir, req.Title, s.vault.Ext())
	}
	return s.vault.Resolve(rel)
}

// record journals a completed write. Journal failures never fail the join:
// the note is already on disk.
func (s *Service) record(strategy string, res *JoinResult, abs string) {
	if s.journal == nil {
		return
	}
	var sum string
	if content, err := note.FromPath(abs).RawContent(); err == nil {
		sum = journal.Checksum([]byte(content))
	}
	err := s.journal.Record(journal.Entry{
		Strategy: strategy,
		Key:      res.Key,
		Path:     filepath.ToSlash(res.Path),
		Outcome:  res.Outcome.String(),
		Checksum: sum,
	})
	if err != nil {
		s.logger.Warn("journal record failed", slog.String("key", res.Key), slog.String("error", err.Error()))
	}
}

// History returns journal entries, newest first. Empty strategy or key
// match every value; the same key under two strategies is only separated when
// strategy is given.
func (s *Service) History(_ context.Context, strategy, key string, limit int) ([]journal.Entry, error) {
	if s.journal == nil {
		return []journal.Entry{}, nil
	}
	entries, err := s.journal.Find(journal.Filter{Strategy: strategy, Key: key}, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(entries), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
