package service

import (
	"context"
	"errors"

	"github.com/okian/assessrec/internal/domain/evaluate"
)

// Error taxonomy surfaced to callers.
var (
	ErrInvalidRequest     = errors.New("either query or url must be provided")
	ErrSourceFetch        = errors.New("failed to fetch source content")
	ErrCatalogUnavailable = errors.New("assessment catalog unavailable")
)

// Kind is the machine-readable error category.
type Kind string

// Error kinds.
const (
	KindInvalidRequest   Kind = "invalid_request"
	KindSourceFetch      Kind = "source_fetch_error"
	KindCatalog          Kind = "catalog_unavailable"
	KindDegenerateMetric Kind = "degenerate_metrics_input"
	KindCanceled         Kind = "canceled"
	KindInternal         Kind = "internal_error"
)

// KindOf maps err to its Kind. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrSourceFetch):
		return KindSourceFetch
	case errors.Is(err, ErrCatalogUnavailable):
		return KindCatalog
	case errors.Is(err, evaluate.ErrDegenerateInput):
		return KindDegenerateMetric
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
