package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Search   SearchConfig   `toml:"search"`
	Identity IdentityConfig `toml:"identity"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Client   ClientConfig   `toml:"client"`
}

// LogConfig controls the logger level (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	ReadTimeout  int    `toml:"read_timeout"`
	WriteTimeout int    `toml:"write_timeout"`
	// PublicURL is the browser-facing origin used to build catalog deep links.
	PublicURL string `toml:"public_url"`
}

// Addr returns host:port for [net/http.Server].
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReadTimeoutDuration converts the configured seconds to a [time.Duration].
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration converts the configured seconds to a [time.Duration].
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// Search backends
const (
	SearchBackendSQLite = "sqlite"
	SearchBackendBleve  = "bleve"
)

// SearchConfig selects how catalog search is served.
//
// An empty IndexPath keeps the bleve index in memory.
type SearchConfig struct {
	Backend   string `toml:"backend"`
	IndexPath string `toml:"index_path"`
	Limit     int    `toml:"limit"`
}

// Identity providers
const (
	IdentityProviderStatic = "static"
	IdentityProviderOAuth  = "oauth"
)

// IdentityConfig configures how bearer tokens are verified.
type IdentityConfig struct {
	Provider     string        `toml:"provider"`
	UserInfoURL  string        `toml:"userinfo_url"`
	SubjectClaim string        `toml:"subject_claim"`
	Tokens       []StaticToken `toml:"tokens"`
}

// StaticToken maps a bcrypt hash of a bearer token to the subject it identifies.
type StaticToken struct {
	Subject string `toml:"subject"`
	Hash    string `toml:"hash"`
}

// OAuthConfig contains the client registration used by `auth login`.
type OAuthConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	RedirectURI  string   `toml:"redirect_uri"`
	Scopes       []string `toml:"scopes"`
}

// ClientConfig contains settings for the CLI and terminal client.
type ClientConfig struct {
	BaseURL       string  `toml:"base_url"`
	Token         string  `toml:"token"`
	DebounceMS    int     `toml:"debounce_ms"`
	CopyRateLimit float64 `toml:"copy_rate_limit"`
	LogFile       string  `toml:"log_file"`
}

// Debounce converts DebounceMS to a [time.Duration].
func (c ClientConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and overwrites path.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
