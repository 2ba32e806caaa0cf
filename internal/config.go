package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/floccus/internal/bookmarks"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Git defaults.
const (
	DefaultRemote = "origin"
	DefaultBranch = "main"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Repository RepositoryConfig  `yaml:"repository"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Repository.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// RepositoryConfig describes the git repository holding the bookmark file.
//
// The working copy lives at Path/Name. When it does not exist yet it is
// cloned from URL. DisablePush keeps mutations local. PullInterval, when
// positive, makes serve mode pull the remote periodically.
type RepositoryConfig struct {
	Path         string        `yaml:"path"`
	Name         string        `yaml:"name"`
	URL          string        `yaml:"url,omitempty"`
	File         string        `yaml:"file"`
	Remote       string        `yaml:"remote"`
	Branch       string        `yaml:"branch"`
	DisablePush  bool          `yaml:"disable_push"`
	PullInterval time.Duration `yaml:"pull_interval,omitempty"`
}

// Dir returns the working copy directory.
func (c *RepositoryConfig) Dir() string {
	return filepath.Join(c.Path, c.Name)
}

// Validate validates the repository configuration.
func (c *RepositoryConfig) Validate() error {
	if c.File == "" {
		c.File = bookmarks.DefaultFile
	}
	if c.Remote == "" {
		c.Remote = DefaultRemote
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.File, validation.Required, validation.By(relativeFile)),
		validation.Field(&c.PullInterval, validation.Min(time.Duration(0))),
	)
}

func relativeFile(v any) error {
	name, _ := v.(string)
	if filepath.IsAbs(name) || filepath.Base(name) != name {
		return fmt.Errorf("must be a file name inside the repository")
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token,omitempty"`
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

// NewDefaultConfig returns a new Config with sensible default values.
// dataDir holds the working copy and the index.
func NewDefaultConfig(dataDir string) *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Repository: RepositoryConfig{
			Path:        dataDir,
			Name:        "bookmarks",
			File:        bookmarks.DefaultFile,
			Remote:      DefaultRemote,
			Branch:      DefaultBranch,
			DisablePush: true,
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(dataDir, "floccus.db"),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
