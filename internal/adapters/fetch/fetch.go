// Package fetch resolves a job description URL to plain text.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/assessrec/pkg/logger"
	"github.com/okian/assessrec/pkg/metrics"
)

// ErrFetch is wrapped by every error FetchText returns.
var ErrFetch = errors.New("fetch source content")

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxBytes  = 2 << 20
	defaultUserAgent = "assessrec/1.0 (+local)"
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds a single fetch.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxBytes caps how much of the body is read.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.hc = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.log = l
		}
	}
}

// Fetcher downloads a document once. There are no retries.
type Fetcher struct {
	hc        *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
	log       logger.Logger
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		hc:        &http.Client{},
		timeout:   defaultTimeout,
		maxBytes:  defaultMaxBytes,
		userAgent: defaultUserAgent,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText downloads rawURL and returns its text. HTML is reduced to its
// visible text; other content types are returned as-is.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	text, err := f.fetch(ctx, rawURL)
	if err != nil {
		metrics.RecordFetchError()
		f.log.Warn(ctx, "fetch failed", logger.String("url", rawURL), logger.Error(err))
		return "", err
	}
	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %w", ErrFetch, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: unsupported url %q", ErrFetch, rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	res, err := f.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, u.Host, res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}

	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(body)
	}
	if !strings.Contains(strings.ToLower(ct), "html") {
		return string(body), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %w", ErrFetch, err)
	}
	return VisibleText(doc), nil
}

// VisibleText returns the whitespace-collapsed text of doc without script,
// style and noscript content.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template").Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	return CleanText(root.Text())
}

// CleanText collapses whitespace, including non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
