package api

import (
	"errors"
	"net/http"

	service "github.com/okian/assessrec/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrServe      = errors.New("api serve failed")
)

// OpError records the handler operation that failed, the sentinel kind it
// maps to and the underlying cause.
type OpError struct {
	Op   string
	Kind error
	Err  error
}

func (e *OpError) Error() string {
	switch {
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *OpError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an OpError carrying only a kind.
func NewKind(op string, kind error) error {
	return &OpError{Op: op, Kind: kind}
}

// WrapKind returns an OpError with an explicit kind and cause.
func WrapKind(op string, kind, err error) error {
	return &OpError{Op: op, Kind: kind, Err: err}
}

// Wrap annotates err with op; the kind is derived from err itself.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindInvalidRequest:
		return http.StatusBadRequest
	case service.KindSourceFetch:
		return http.StatusBadGateway
	case service.KindCatalog:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) int {
	kind := service.KindOf(err)
	if errors.Is(err, ErrBadRequest) {
		kind = service.KindInvalidRequest
	}
	if kind == "" {
		kind = service.KindInternal
	}
	msg := http.StatusText(statusFor(kind))
	if err != nil {
		msg = err.Error()
	}
	status := statusFor(kind)
	writeJSON(w, status, errorResponse{Error: string(kind), Message: msg})
	return status
}
