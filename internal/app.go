package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joining"
	"github.com/starford/vaultjoin/internal/joinservice"
	"github.com/starford/vaultjoin/internal/journal"
	"github.com/starford/vaultjoin/internal/vault"
)

// app is the wired application shared by every front end.
type app struct {
	cfg     *Config
	logger  *slog.Logger
	service *joinservice.Service
	journal *journal.DB
}

func (a *app) Close() error {
	if a.journal != nil {
		return a.journal.Close()
	}
	return nil
}

func newApp(opts ...Option) (*app, error) {
	o := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	if o.config == nil {
		return nil, errors.New("config is required")
	}
	cfg := o.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(o.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("vault_codec", cfg.Vault.Codec),
		slog.String("journal_path", cfg.Journal.Path),
		slog.Int("strategies", len(cfg.Strategies)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure vault directory exists.
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}

	c, err := codec.ByName(cfg.Vault.Codec)
	if err != nil {
		return nil, err
	}
	v, err := vault.Open(cfg.Vault.Path, vault.WithExtension(cfg.Vault.Extension), vault.WithCodec(c))
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	strategies := make(map[string]joining.Strategy[string], len(cfg.Strategies))
	for i := range cfg.Strategies {
		s, err := cfg.Strategies[i].Build()
		if err != nil {
			return nil, err
		}
		strategies[cfg.Strategies[i].Name] = s
	}

	a := &app{cfg: cfg, logger: logger}
	svcOpts := []joinservice.Option{
		joinservice.WithLogger(logger),
		joinservice.WithAtomicWrites(cfg.Vault.AtomicWrites),
	}
	if o.notifier != nil {
		svcOpts = append(svcOpts, joinservice.WithNotifier(o.notifier))
	}
	if cfg.Journal.Enabled() {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		a.journal = db
		svcOpts = append(svcOpts, joinservice.WithJournal(db))
	}
	a.service = joinservice.New(v, strategies, svcOpts...)
	return a, nil
}
