// Package catalog supplies the assessment catalog to the recommender. A
// CachedProvider serves a TTL-bounded in-memory copy and refreshes it from a
// snapshot store and then from live sources.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/assessrec/internal/adapters/repository"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
	"github.com/okian/assessrec/pkg/metrics"
)

// ErrCatalogEmpty is returned when no snapshot or source yields a record.
var ErrCatalogEmpty = errors.New("catalog: no records available")

const (
	defaultTTL     = time.Hour
	defaultLoadTTL = 2 * time.Minute
	sourceSnapshot = "snapshot"
	flightKey      = "catalog"
)

// Provider returns the full catalog.
type Provider interface {
	Catalog(ctx context.Context) ([]model.AssessmentRecord, error)
}

// Source produces catalog records from somewhere live.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.AssessmentRecord, error)
}

// ephemeral is implemented by sources whose output is not worth persisting.
type ephemeral interface {
	Ephemeral() bool
}

// Option configures a CachedProvider.
type Option func(*CachedProvider)

// WithTTL sets how long a loaded catalog is served before reloading.
func WithTTL(d time.Duration) Option {
	return func(p *CachedProvider) {
		if d > 0 {
			p.ttl = d
		}
	}
}

// WithLoadTimeout bounds a single shared load.
func WithLoadTimeout(d time.Duration) Option {
	return func(p *CachedProvider) {
		if d > 0 {
			p.loadTimeout = d
		}
	}
}

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(p *CachedProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *CachedProvider) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStore enables snapshot persistence.
func WithStore(s repository.Store) Option {
	return func(p *CachedProvider) {
		p.store = s
	}
}

// WithSources sets the live sources, tried in order.
func WithSources(sources ...Source) Option {
	return func(p *CachedProvider) {
		p.sources = append([]Source(nil), sources...)
	}
}

// CachedProvider implements Provider with a TTL cache. Concurrent misses
// collapse into a single load.
type CachedProvider struct {
	ttl         time.Duration
	loadTimeout time.Duration
	now         func() time.Time
	log         logger.Logger
	store       repository.Store
	sources     []Source

	mu       sync.RWMutex
	records  []model.AssessmentRecord
	loadedAt time.Time
	source   string

	group singleflight.Group
}

// NewCachedProvider creates a provider. Without sources it only serves the
// snapshot store.
func NewCachedProvider(opts ...Option) *CachedProvider {
	p := &CachedProvider{
		ttl:         defaultTTL,
		loadTimeout: defaultLoadTTL,
		now:         time.Now,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Catalog implements Provider.
func (p *CachedProvider) Catalog(ctx context.Context) ([]model.AssessmentRecord, error) {
	if recs, ok := p.cached(); ok {
		metrics.RecordCatalogCache(true)
		return recs, nil
	}
	metrics.RecordCatalogCache(false)
	return p.load(ctx, true)
}

// Refresh reloads from the live sources, bypassing cache and snapshot.
func (p *CachedProvider) Refresh(ctx context.Context) ([]model.AssessmentRecord, error) {
	return p.load(ctx, false)
}

// Invalidate drops the cached copy.
func (p *CachedProvider) Invalidate() {
	p.mu.Lock()
	p.records = nil
	p.loadedAt = time.Time{}
	p.source = ""
	p.mu.Unlock()
}

// Info describes the cached copy.
type Info struct {
	Size     int       `json:"size"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loadedAt"`
	Fresh    bool      `json:"fresh"`
}

// Info reports the state of the cache.
func (p *CachedProvider) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Info{
		Size:     len(p.records),
		Source:   p.source,
		LoadedAt: p.loadedAt,
		Fresh:    p.freshLocked(),
	}
}

func (p *CachedProvider) cached() ([]model.AssessmentRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.freshLocked() {
		return nil, false
	}
	return slices.Clone(p.records), true
}

func (p *CachedProvider) freshLocked() bool {
	return len(p.records) > 0 && p.now().Sub(p.loadedAt) < p.ttl
}

func (p *CachedProvider) load(ctx context.Context, useSnapshot bool) ([]model.AssessmentRecord, error) {
	key := flightKey
	if !useSnapshot {
		key += ":live"
	}
	// The shared load outlives any single caller; callers stop waiting on
	// their own ctx.
	ch := p.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.loadTimeout)
		defer cancel()

		// A flight that finished just before this one started may have
		// already filled the cache.
		if useSnapshot {
			if recs, ok := p.cached(); ok {
				return recs, nil
			}
		}
		start := p.now()
		recs, source, err := p.fetch(ctx, useSnapshot)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.records = recs
		p.loadedAt = p.now()
		p.source = source
		p.mu.Unlock()

		metrics.RecordCatalogRefresh(source)
		metrics.UpdateCatalogSize(len(recs))
		p.log.Info(ctx, "catalog loaded",
			logger.String("source", source),
			logger.Int("records", len(recs)),
			logger.Duration("took", p.now().Sub(start)),
		)
		return recs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]model.AssessmentRecord)), nil
	}
}

func (p *CachedProvider) fetch(ctx context.Context, useSnapshot bool) ([]model.AssessmentRecord, string, error) {
	if useSnapshot && p.store != nil {
		recs, err := p.store.Load(ctx)
		switch {
		case err == nil:
			if recs = Sanitize(recs); len(recs) > 0 {
				return recs, sourceSnapshot, nil
			}
		case errors.Is(err, repository.ErrNoSnapshot):
		default:
			p.log.Warn(ctx, "snapshot load failed", logger.Error(err))
		}
	}

	var errs []error
	for _, src := range p.sources {
		recs, err := src.Fetch(ctx)
		if err != nil {
			p.log.Warn(ctx, "catalog source failed", logger.String("source", src.Name()), logger.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		recs = Sanitize(recs)
		if len(recs) == 0 {
			p.log.Warn(ctx, "catalog source returned no records", logger.String("source", src.Name()))
			continue
		}
		p.persist(ctx, src, recs)
		return recs, src.Name(), nil
	}

	if len(errs) > 0 {
		return nil, "", fmt.Errorf("%w: %w", ErrCatalogEmpty, errors.Join(errs...))
	}
	return nil, "", ErrCatalogEmpty
}

func (p *CachedProvider) persist(ctx context.Context, src Source, recs []model.AssessmentRecord) {
	if p.store == nil {
		return
	}
	if e, ok := src.(ephemeral); ok && e.Ephemeral() {
		return
	}
	if err := p.store.Save(ctx, recs); err != nil {
		p.log.Warn(ctx, "snapshot save failed", logger.String("source", src.Name()), logger.Error(err))
	}
}

// Sanitize drops records without a name and later duplicates by name,
// keeping order. Missing support flags become No.
func Sanitize(recs []model.AssessmentRecord) []model.AssessmentRecord {
	seen := make(map[string]struct{}, len(recs))
	out := make([]model.AssessmentRecord, 0, len(recs))
	for _, r := range recs {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		if _, dup := seen[r.Name]; dup {
			continue
		}
		seen[r.Name] = struct{}{}
		if r.RemoteTestingSupport != model.SupportYes {
			r.RemoteTestingSupport = model.SupportNo
		}
		if r.AdaptiveSupport != model.SupportYes {
			r.AdaptiveSupport = model.SupportNo
		}
		out = append(out, r)
	}
	return out
}
