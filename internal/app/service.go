// Package service sequences the recommendation pipeline: resolve the query,
// load the catalog, extract features, filter, rank and cut off.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/assessrec/internal/adapters/catalog"
	"github.com/okian/assessrec/internal/domain/extract"
	"github.com/okian/assessrec/internal/domain/filter"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/internal/domain/ranking"
	"github.com/okian/assessrec/internal/domain/taxonomy"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/okian/assessrec/pkg/metrics"
)

const (
	defaultTopK         = 10
	defaultFallbackSize = 10
)

// CatalogProvider returns the full assessment catalog.
type CatalogProvider interface {
	Catalog(ctx context.Context) ([]model.AssessmentRecord, error)
}

// ContentFetcher resolves a URL to text.
type ContentFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Service implements the API dependencies for the recommender.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	catalog CatalogProvider
	fetcher ContentFetcher

	// Pipeline
	taxonomy     *taxonomy.Taxonomy
	allKeywords  bool
	extractor    *extract.Extractor
	filter       *filter.Filter
	topK         int
	fallbackSize int

	// State
	started   bool
	startedAt time.Time
	requests  atomic.Int64
	failures  atomic.Int64
	fallbacks atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the catalog provider.
func WithCatalog(p CatalogProvider) Option {
	return func(s *Service) {
		s.catalog = p
	}
}

// WithFetcher sets the URL content fetcher.
func WithFetcher(f ContentFetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithTaxonomy replaces the built-in skill taxonomy.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(s *Service) {
		if t != nil {
			s.taxonomy = t
		}
	}
}

// WithAllKeywordExtraction makes skill extraction probe every keyword of a
// category rather than only the first one.
func WithAllKeywordExtraction(on bool) Option {
	return func(s *Service) {
		s.allKeywords = on
	}
}

// WithTopK sets the result cutoff.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithFallbackSize sets how many leading catalog records are ranked when
// filtering leaves nothing.
func WithFallbackSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fallbackSize = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		taxonomy:     taxonomy.Default(),
		topK:         defaultTopK,
		fallbackSize: defaultFallbackSize,
		logger:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	var extractOpts []extract.Option
	if s.allKeywords {
		extractOpts = append(extractOpts, extract.WithAllKeywords())
	}
	s.extractor = extract.New(s.taxonomy, extractOpts...)
	s.filter = filter.New(s.taxonomy, filter.WithLogger(s.logger.Named("filter")))
	return s
}

// Start warms the catalog. A failed warm-up is logged; requests will retry
// the load.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting recommendation service...")

	if s.catalog != nil {
		recs, err := s.catalog.Catalog(ctx)
		if err != nil {
			s.logger.Warn(ctx, "catalog warm-up failed", logger.Error(err))
		} else {
			s.logger.Info(ctx, "catalog warmed", logger.Int("records", len(recs)))
		}
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("topK", s.topK),
		logger.Int("fallbackSize", s.fallbackSize),
		logger.Strings("categories", s.taxonomy.Labels()),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// Request is the caller-facing input: free text or a URL.
type Request struct {
	Query string `json:"query,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Resolve picks the input to use. A non-blank query wins over a URL.
func (r Request) Resolve() (input string, isURL bool, err error) {
	if q := strings.TrimSpace(r.Query); q != "" {
		return q, false, nil
	}
	if u := strings.TrimSpace(r.URL); u != "" {
		return u, true, nil
	}
	return "", false, ErrInvalidRequest
}

// Explanation is the full pipeline trace of one request.
type Explanation struct {
	Query          string                   `json:"query"`
	Features       model.QueryFeatures      `json:"features"`
	CatalogSize    int                      `json:"catalogSize"`
	Steps          []filter.Step            `json:"steps"`
	Fallback       bool                     `json:"fallback"`
	Scored         []model.ScoredCandidate  `json:"scored"`
	Recommendation []model.AssessmentRecord `json:"recommendations"`
}

// RecommendRequest validates req and runs the pipeline.
func (s *Service) RecommendRequest(ctx context.Context, req Request) ([]model.AssessmentRecord, error) {
	input, isURL, err := req.Resolve()
	if err != nil {
		s.observe(ctx, time.Now(), err)
		return nil, err
	}
	return s.Recommend(ctx, input, isURL)
}

// Recommend returns at most topK records for input, best first. With isURL
// the input is fetched first and a fetch failure aborts the request.
func (s *Service) Recommend(ctx context.Context, input string, isURL bool) ([]model.AssessmentRecord, error) {
	start := time.Now()
	exp, err := s.explain(ctx, input, isURL)
	s.observe(ctx, start, err)
	if err != nil {
		return nil, err
	}
	return exp.Recommendation, nil
}

// Explain runs the pipeline for req and returns every intermediate result.
func (s *Service) Explain(ctx context.Context, req Request) (*Explanation, error) {
	input, isURL, err := req.Resolve()
	if err != nil {
		return nil, err
	}
	return s.explain(ctx, input, isURL)
}

func (s *Service) explain(ctx context.Context, input string, isURL bool) (*Explanation, error) {
	query := input
	if isURL {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: no fetcher configured", ErrSourceFetch)
		}
		text, err := s.fetcher.FetchText(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSourceFetch, err)
		}
		query = text
	}

	records, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	features := s.extractor.Extract(query)
	filtered, report := s.filter.Apply(ctx, records, features)

	exp := &Explanation{
		Query:       query,
		Features:    features,
		CatalogSize: len(records),
		Steps:       report.Steps,
	}

	if len(filtered) == 0 {
		exp.Fallback = true
		filtered = records[:min(s.fallbackSize, len(records))]
		s.fallbacks.Add(1)
		metrics.RecordFilterFallback()
		s.logger.Debug(ctx, "filter removed every record, ranking fallback set",
			logger.Int("fallback", len(filtered)),
		)
	}

	exp.Scored = ranking.Rank(filtered, query)
	metrics.RecordCandidatesRanked(len(exp.Scored))
	exp.Recommendation = model.Records(ranking.TopK(exp.Scored, s.topK))
	return exp, nil
}

// Catalog returns the current catalog or ErrCatalogUnavailable.
func (s *Service) Catalog(ctx context.Context) ([]model.AssessmentRecord, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: no provider configured", ErrCatalogUnavailable)
	}
	records, err := s.catalog.Catalog(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if len(records) == 0 {
		return nil, ErrCatalogUnavailable
	}
	return records, nil
}

func (s *Service) observe(ctx context.Context, start time.Time, err error) {
	s.requests.Add(1)
	outcome := "ok"
	if err != nil {
		s.failures.Add(1)
		outcome = string(KindOf(err))
		s.logger.Warn(ctx, "recommendation failed",
			logger.String("kind", outcome),
			logger.Error(err),
		)
	}
	metrics.RecordRecommendation(outcome, float64(time.Since(start).Microseconds())/1000)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":      s.started,
		"topK":         s.topK,
		"fallbackSize": s.fallbackSize,
		"categories":   s.taxonomy.Len(),
		"requests":     s.requests.Load(),
		"failures":     s.failures.Load(),
		"fallbacks":    s.fallbacks.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	if info, ok := s.catalog.(interface{ Info() catalog.Info }); ok {
		stats["catalog"] = info.Info()
	}
	return stats
}
