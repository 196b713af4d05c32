package internal

import (
	"io"

	"github.com/starford/vaultjoin/internal/joinservice"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	logOutput io.Writer
	notifier  joinservice.Notifier
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sets where structured logs are written. The MCP transport
// owns stdout, so it logs to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

func withNotifier(n joinservice.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}
