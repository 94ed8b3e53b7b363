package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/assessrec/internal/adapters/fetch"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
)

// CrawlerSourceName names the live catalog crawler.
const CrawlerSourceName = "crawler"

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) CrawlerOption {
	return func(cr *Crawler) {
		if c != nil {
			cr.hc = c
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) CrawlerOption {
	return func(cr *Crawler) {
		if ua != "" {
			cr.userAgent = ua
		}
	}
}

// WithDetails follows every product link and reads hints from its page.
// Requests are limited to perSec with at most concurrency in flight.
func WithDetails(perSec float64, concurrency int) CrawlerOption {
	return func(cr *Crawler) {
		cr.details = true
		if perSec > 0 {
			cr.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
		}
		if concurrency > 0 {
			cr.concurrency = concurrency
		}
	}
}

// WithCrawlerLogger sets the logger.
func WithCrawlerLogger(l logger.Logger) CrawlerOption {
	return func(cr *Crawler) {
		if l != nil {
			cr.log = l
		}
	}
}

// Crawler reads the product catalog page. It never invents field values:
// anything the markup does not state stays empty, and support flags
// default to No.
type Crawler struct {
	catalogURL  string
	hc          *http.Client
	userAgent   string
	details     bool
	limiter     *rate.Limiter
	concurrency int
	log         logger.Logger
}

// NewCrawler creates a crawler for catalogURL.
func NewCrawler(catalogURL string, opts ...CrawlerOption) *Crawler {
	cr := &Crawler{
		catalogURL:  catalogURL,
		hc:          &http.Client{Timeout: 20 * time.Second},
		userAgent:   "assessrec/1.0 (+local)",
		limiter:     rate.NewLimiter(rate.Limit(2), 1),
		concurrency: 4,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(cr)
	}
	return cr
}

// Name implements Source.
func (cr *Crawler) Name() string { return CrawlerSourceName }

// Fetch implements Source.
func (cr *Crawler) Fetch(ctx context.Context) ([]model.AssessmentRecord, error) {
	base, err := url.Parse(cr.catalogURL)
	if err != nil {
		return nil, fmt.Errorf("crawler: parse catalog url: %w", err)
	}
	doc, err := cr.get(ctx, cr.catalogURL)
	if err != nil {
		return nil, fmt.Errorf("crawler: catalog page: %w", err)
	}

	var recs []model.AssessmentRecord
	doc.Find(".product-item").Each(func(_ int, item *goquery.Selection) {
		name := fetch.CleanText(item.Find(".product-title").First().Text())
		if name == "" {
			return
		}
		r := model.AssessmentRecord{Name: name}
		if href, ok := item.Find("a[href]").First().Attr("href"); ok {
			r.URL = resolve(base, href)
		}
		readHints(item, &r)
		recs = append(recs, r)
	})

	if cr.details && len(recs) > 0 {
		cr.enrich(ctx, recs)
	}

	for i := range recs {
		if recs[i].RemoteTestingSupport == "" {
			recs[i].RemoteTestingSupport = model.SupportNo
		}
		if recs[i].AdaptiveSupport == "" {
			recs[i].AdaptiveSupport = model.SupportNo
		}
	}

	cr.log.Info(ctx, "catalog crawled",
		logger.String("url", cr.catalogURL),
		logger.Int("records", len(recs)),
		logger.Bool("details", cr.details),
	)
	return recs, nil
}

// enrich fills missing fields from product pages. A failing page leaves its
// record as it was.
func (cr *Crawler) enrich(ctx context.Context, recs []model.AssessmentRecord) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cr.concurrency)
	for i := range recs {
		if recs[i].URL == "" {
			continue
		}
		g.Go(func() error {
			if err := cr.limiter.Wait(gctx); err != nil {
				return err
			}
			doc, err := cr.get(gctx, recs[i].URL)
			if err != nil {
				cr.log.Debug(gctx, "product page skipped", logger.String("url", recs[i].URL), logger.Error(err))
				return nil
			}
			readHints(doc.Selection, &recs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cr.log.Warn(ctx, "product page crawl stopped", logger.Error(err))
	}
}

func (cr *Crawler) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", cr.userAgent)

	res, err := cr.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", res.StatusCode)
	}
	return goquery.NewDocumentFromReader(res.Body)
}

// readHints copies structured hints from sel into r without overwriting
// fields that are already set.
func readHints(sel *goquery.Selection, r *model.AssessmentRecord) {
	if r.Duration == "" {
		r.Duration = hint(sel, "data-duration", ".product-duration")
	}
	if r.TestType == "" {
		r.TestType = hint(sel, "data-test-type", ".product-type")
	}
	if r.RemoteTestingSupport == "" {
		if v := hint(sel, "data-remote", ".product-remote"); v != "" {
			r.RemoteTestingSupport = model.ParseSupport(v)
		}
	}
	if r.AdaptiveSupport == "" {
		if v := hint(sel, "data-adaptive", ".product-adaptive"); v != "" {
			r.AdaptiveSupport = model.ParseSupport(v)
		}
	}
}

// hint reads attr from sel itself or its first descendant carrying it,
// then falls back to the text of the first child matching class.
func hint(sel *goquery.Selection, attr, class string) string {
	if v, ok := sel.Attr(attr); ok {
		if v = fetch.CleanText(v); v != "" {
			return v
		}
	}
	if v, ok := sel.Find("[" + attr + "]").First().Attr(attr); ok {
		if v = fetch.CleanText(v); v != "" {
			return v
		}
	}
	return fetch.CleanText(sel.Find(class).First().Text())
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
