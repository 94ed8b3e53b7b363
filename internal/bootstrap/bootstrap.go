// Package bootstrap assembles the recommender from configuration. The server
// and the CLI share it so both run the same pipeline.
package bootstrap

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/assessrec/internal/adapters/catalog"
	"github.com/okian/assessrec/internal/adapters/fetch"
	"github.com/okian/assessrec/internal/adapters/repository"
	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/config"
	"github.com/okian/assessrec/internal/domain/taxonomy"
	"github.com/okian/assessrec/pkg/logger"
)

// Components holds everything built from a Config.
type Components struct {
	Store   repository.Store
	Catalog *catalog.CachedProvider
	Crawler *catalog.Crawler
	Fetcher *fetch.Fetcher
	Service *service.Service
}

// Build validates cfg and wires the snapshot store, catalog sources, content
// fetcher and service. Callers must Close the result.
func Build(cfg *config.Config, log logger.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	tx := taxonomy.Default()
	if len(cfg.Taxonomy) > 0 {
		custom, err := taxonomy.FromMap(cfg.Taxonomy)
		if err != nil {
			return nil, fmt.Errorf("%w: taxonomy: %w", config.ErrInvalidConfig, err)
		}
		tx = custom
	}

	store, err := repository.Open(cfg.CatalogStore, cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}

	c := &Components{Store: store}

	crawlerOpts := []catalog.CrawlerOption{
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout()}),
		catalog.WithUserAgent(cfg.UserAgent),
		catalog.WithCrawlerLogger(log.Named("crawler")),
	}
	if cfg.CrawlDetails {
		crawlerOpts = append(crawlerOpts, catalog.WithDetails(cfg.CrawlRatePerSec, cfg.CrawlConcurrency))
	}

	var sources []catalog.Source
	if cfg.CatalogURL != "" {
		c.Crawler = catalog.NewCrawler(cfg.CatalogURL, crawlerOpts...)
		sources = append(sources, c.Crawler)
	}
	sources = append(sources, catalog.SampleSource{})

	c.Catalog = catalog.NewCachedProvider(
		catalog.WithTTL(cfg.CatalogTTL()),
		catalog.WithLogger(log.Named("catalog")),
		catalog.WithStore(store),
		catalog.WithSources(sources...),
	)

	c.Fetcher = fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithMaxBytes(cfg.FetchMaxBytes),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(log.Named("fetch")),
	)

	c.Service = service.New(
		service.WithLogger(log.Named("service")),
		service.WithCatalog(c.Catalog),
		service.WithFetcher(c.Fetcher),
		service.WithTaxonomy(tx),
		service.WithAllKeywordExtraction(cfg.ExtractAllKeywords),
		service.WithTopK(cfg.TopK),
		service.WithFallbackSize(cfg.FallbackSize),
	)
	return c, nil
}

// Close stops the service and releases the snapshot store.
func (c *Components) Close() error {
	var errs []error
	if c.Service != nil {
		c.Service.Stop()
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close catalog store: %w", err))
		}
	}
	return errors.Join(errs...)
}
