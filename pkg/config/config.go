package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the application
type Config struct {
	Vault            string  `koanf:"vault"`
	WebMode          bool    `koanf:"web"`
	Port             int     `koanf:"port"`
	Watch            bool    `koanf:"watch"`
	OpenBrowser      bool    `koanf:"open"`
	VerboseCnt       int     `koanf:"verbose"`
	PhysicsPreset    string  `koanf:"physics"`
	RevealIntervalMs int     `koanf:"reveal-interval"`
	FadeStep         float64 `koanf:"fade-step"`
	FetchWorkers     int     `koanf:"fetch-workers"`
	FetchTimeoutMs   int     `koanf:"fetch-timeout"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"vault":           ".",
		"web":             false,
		"port":            8080,
		"watch":           false,
		"open":            true,
		"verbose":         0,
		"physics":         "classic",
		"reveal-interval": 150,
		"fade-step":       0.1,
		"fetch-workers":   4,
		"fetch-timeout":   5000,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - notegraph.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("notegraph.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: NOTEGRAPH_ (e.g., NOTEGRAPH_PORT=9090)
	if err := k.Load(env.Provider("NOTEGRAPH_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "NOTEGRAPH_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.PhysicsPreset {
	case "classic", "dense":
	default:
		return fmt.Errorf("unknown physics preset %q (want classic or dense)", c.PhysicsPreset)
	}
	if c.RevealIntervalMs <= 0 {
		return fmt.Errorf("reveal-interval must be positive, got %d", c.RevealIntervalMs)
	}
	if c.FadeStep <= 0 || c.FadeStep > 1 {
		return fmt.Errorf("fade-step must be in (0,1], got %g", c.FadeStep)
	}
	if c.FetchWorkers <= 0 {
		return fmt.Errorf("fetch-workers must be positive, got %d", c.FetchWorkers)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
