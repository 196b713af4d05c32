package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joining"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Strategy kinds.
const (
	StrategyBranded    = "branded"
	StrategyTypeAndKey = "type_and_key"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Vault      VaultConfig       `yaml:"vault"`
	Journal    JournalConfig     `yaml:"journal"`
	Auth       AuthConfig        `yaml:"auth"`
	Strategies []StrategyConfig  `yaml:"strategies"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Strategies))
	for i := range c.Strategies {
		s := &c.Strategies[i]
		if err := s.Validate(); err != nil {
			return fmt.Errorf("strategies[%d]: %w", i, err)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("strategies[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig describes the note vault.
type VaultConfig struct {
	Path         string `yaml:"path"`
	Extension    string `yaml:"extension"`
	Codec        string `yaml:"codec"`
	AtomicWrites bool   `yaml:"atomic_writes"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required),
		validation.Field(&c.Codec, validation.By(func(any) error {
			_, err := codec.ByName(c.Codec)
			return err
		})),
	)
}

// JournalConfig holds the SQLite write journal location. An empty path
// disables the journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether writes are journaled.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// StrategyConfig declares a named join strategy.
//
// A "branded" strategy reads the key from BrandKey. A "type_and_key" strategy
// only matches notes whose TypeKey field equals NoteType and reads the key from
// IDKey.
type StrategyConfig struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	BrandKey string `yaml:"brand_key"`
	TypeKey  string `yaml:"type_key"`
	NoteType string `yaml:"note_type"`
	IDKey    string `yaml:"id_key"`
}

// Validate validates the strategy configuration.
func (c *StrategyConfig) Validate() error {
	branded := c.Kind == StrategyBranded
	typed := c.Kind == StrategyTypeAndKey
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Kind, validation.Required, validation.In(StrategyBranded, StrategyTypeAndKey)),
		validation.Field(&c.BrandKey, validation.When(branded, validation.Required)),
		validation.Field(&c.TypeKey, validation.When(typed, validation.Required)),
		validation.Field(&c.NoteType, validation.When(typed, validation.Required)),
		validation.Field(&c.IDKey, validation.When(typed, validation.Required)),
	)
}

// Build returns the strategy this configuration describes. Keys are
// extracted as strings.
func (c *StrategyConfig) Build() (joining.Strategy[string], error) {
	switch c.Kind {
	case StrategyBranded:
		return joining.NewBranded[string](c.BrandKey), nil
	case StrategyTypeAndKey:
		return joining.NewTypeAndKey[string](c.TypeKey, c.NoteType, c.IDKey), nil
	}
	return nil, fmt.Errorf("strategy %q: unknown kind %q", c.Name, c.Kind)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path:      "./vault",
			Extension: "md",
			Codec:     "yaml",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Strategies: []StrategyConfig{
			{Name: "id", Kind: StrategyBranded, BrandKey: "id"},
		},
	}
}
