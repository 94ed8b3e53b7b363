package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "ASSESSREC_"
	envFileVar = "ASSESSREC_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ASSESSREC_CONFIG is set
//  3. env (prefix ASSESSREC_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ASSESSREC_TOP_K -> top_k. Underscores are kept to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the rest of the service relies on.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: top_k must be at least 1, got %d", ErrInvalidConfig, c.TopK)
	}
	if c.FallbackSize < 1 {
		return fmt.Errorf("%w: fallback_size must be at least 1, got %d", ErrInvalidConfig, c.FallbackSize)
	}
	switch c.CatalogStore {
	case StoreJSON, StoreSQLite, StoreNone:
	default:
		return fmt.Errorf("%w: catalog_store must be one of json, sqlite, none: %q", ErrInvalidConfig, c.CatalogStore)
	}
	if c.CatalogStore != StoreNone && c.CatalogPath == "" {
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	}
	if c.CrawlConcurrency < 1 {
		return fmt.Errorf("%w: crawl_concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.CrawlRatePerSec <= 0 {
		return fmt.Errorf("%w: crawl_rate_per_sec must be positive", ErrInvalidConfig)
	}
	if c.FetchTimeoutMS <= 0 || c.FetchMaxBytes <= 0 {
		return fmt.Errorf("%w: fetch limits must be positive", ErrInvalidConfig)
	}
	for label, keywords := range c.Taxonomy {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("%w: taxonomy label must not be empty", ErrInvalidConfig)
		}
		if len(keywords) == 0 {
			return fmt.Errorf("%w: taxonomy category %q has no keywords", ErrInvalidConfig, label)
		}
	}
	return nil
}
