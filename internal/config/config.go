// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config holding every default.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Snapshot backends accepted by CatalogStore.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

// Config contains process configuration shared by the server and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TopK caps the number of recommendations returned.
	TopK int `koanf:"top_k"`

	// FallbackSize is how many catalog records are ranked when filtering
	// removes everything.
	FallbackSize int `koanf:"fallback_size"`

	// CatalogTTLSeconds bounds how long a loaded catalog is served from memory.
	CatalogTTLSeconds int `koanf:"catalog_ttl_seconds"`

	// CatalogURL is the product catalog page crawled for records.
	CatalogURL string `koanf:"catalog_url"`

	// CatalogStore selects the snapshot backend: json, sqlite or none.
	CatalogStore string `koanf:"catalog_store"`

	// CatalogPath is the snapshot file (json) or database (sqlite).
	CatalogPath string `koanf:"catalog_path"`

	// Crawl politeness settings.
	CrawlRatePerSec  float64 `koanf:"crawl_rate_per_sec"`
	CrawlConcurrency int     `koanf:"crawl_concurrency"`
	CrawlDetails     bool    `koanf:"crawl_details"`

	// FetchTimeoutMS and FetchMaxBytes bound job description downloads.
	FetchTimeoutMS int   `koanf:"fetch_timeout_ms"`
	FetchMaxBytes  int64 `koanf:"fetch_max_bytes"`

	// UserAgent is sent with every outbound request.
	UserAgent string `koanf:"user_agent"`

	// ExtractAllKeywords probes every keyword of a taxonomy category during
	// extraction instead of only the first.
	ExtractAllKeywords bool `koanf:"extract_all_keywords"`

	// Taxonomy overrides the built-in skill taxonomy (label -> keywords).
	Taxonomy map[string][]string `koanf:"taxonomy"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		TopK:              10,
		FallbackSize:      10,
		CatalogTTLSeconds: 3600,
		CatalogURL:        "https://www.shl.com/solutions/products/product-catalog/",
		CatalogStore:      StoreJSON,
		CatalogPath:       "data/assessments.json",
		CrawlRatePerSec:   2,
		CrawlConcurrency:  4,
		CrawlDetails:      false,
		FetchTimeoutMS:    15_000,
		FetchMaxBytes:     2 << 20,
		UserAgent:         "assessrec/1.0 (+local)",
	}
}

// CatalogTTL returns the catalog cache lifetime.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLSeconds) * time.Second
}

// FetchTimeout returns the content fetcher timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
