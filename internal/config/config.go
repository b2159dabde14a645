package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment overrides, e.g. IDEORA_AUTH_SECRET.
const envPrefix = "IDEORA_"

// defaultConfigPaths lists config file locations searched in order.
var defaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ideora/config.yaml",
}

// Config is the process-wide configuration, constructed once at startup and
// passed by injection. Business logic never reads ambient environment state.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Authz    AuthzConfig    `koanf:"authz"`
	Rate     RateConfig     `koanf:"rate"`
}

type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
}

type DatabaseConfig struct {
	// DSN is the PostgreSQL connection string. Empty selects the in-memory
	// store, which is only suitable for local development and tests.
	DSN string `koanf:"dsn"`
}

type AuthConfig struct {
	// Secret signs bearer tokens. Required; startup fails when empty so the
	// process can never run with a default/empty signing key.
	Secret string `koanf:"secret"`
	// Algorithm names the signing algorithm. Only HS256 is supported.
	Algorithm string `koanf:"algorithm"`
	// TokenTTLMinutes is the default access token lifetime.
	TokenTTLMinutes float64 `koanf:"token_ttl_minutes"`
	// Stateless skips the user refetch when resolving request identity.
	// Faster, but role/disable changes are invisible until token expiry.
	Stateless bool `koanf:"stateless"`
}

type AuthzConfig struct {
	// PolicyPath persists policy grants to a CSV file; empty keeps grants
	// in memory only.
	PolicyPath string `koanf:"policy_path"`
}

type RateConfig struct {
	Burst     int `koanf:"burst"`
	PerSecond int `koanf:"per_second"`
}

// TokenTTL returns the configured access token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes * float64(time.Minute))
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Auth: AuthConfig{
			Algorithm:       "HS256",
			TokenTTLMinutes: 15,
		},
		Rate: RateConfig{
			Burst:     20,
			PerSecond: 10,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// IDEORA_* environment variables, in that order of precedence, then
// validates it. An explicit path overrides the default search list.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would start the process in an
// insecure state. Failing here is fatal; there are no silent fallbacks.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("config: auth.secret is required")
	}
	if c.Auth.Algorithm != "HS256" {
		return fmt.Errorf("config: unsupported auth.algorithm %q", c.Auth.Algorithm)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("config: auth.token_ttl_minutes must be positive")
	}
	if c.Rate.Burst <= 0 || c.Rate.PerSecond <= 0 {
		return errors.New("config: rate.burst and rate.per_second must be positive")
	}
	// A durable database with in-memory grants would lose every write
	// grant on restart while the granted resources survive, locking
	// owners out of their own records.
	if strings.TrimSpace(c.Database.DSN) != "" && strings.TrimSpace(c.Authz.PolicyPath) == "" {
		return errors.New("config: authz.policy_path is required when database.dsn is set")
	}
	return nil
}

func findConfigFile() string {
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps IDEORA_AUTH_TOKEN_TTL_MINUTES to auth.token_ttl_minutes:
// the first underscore separates the section, the rest belongs to the key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
