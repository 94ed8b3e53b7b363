package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
)

// Request bodies larger than this are rejected.
const maxRequestBody = 1 << 20

// recommendRequest mirrors the OpenAPI schema for /api/recommend.
type recommendRequest struct {
	Query string `json:"query"`
	URL   string `json:"url"`
}

type recommendResponse struct {
	Recommendations []model.AssessmentRecord `json:"recommendations"`
}

// RecommendHandler serves recommendation and explanation requests.
type RecommendHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRecommendHandler creates a new recommend handler.
func NewRecommendHandler(deps Dependencies, l logger.Logger) *RecommendHandler {
	if l == nil {
		l = logger.NewNop()
	}
	return &RecommendHandler{deps: deps, logger: l}
}

// HandleRecommend handles GET and POST /api/recommend.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommend"
	req, err := decodeRecommendRequest(r)
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req == nil {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	recs, err := h.deps.RecommendRequest(r.Context(), service.Request{Query: req.Query, URL: req.URL})
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	if recs == nil {
		recs = []model.AssessmentRecord{}
	}
	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

// HandleExplain handles GET and POST /api/explain.
func (h *RecommendHandler) HandleExplain(w http.ResponseWriter, r *http.Request) {
	const op = "api.explain"
	req, err := decodeRecommendRequest(r)
	if err != nil {
		h.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req == nil {
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}

	exp, err := h.deps.Explain(r.Context(), service.Request{Query: req.Query, URL: req.URL})
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (h *RecommendHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := writeError(w, err)
	fields := []logger.Field{
		logger.String("path", r.URL.Path),
		logger.Int("status", status),
		logger.String("request_id", RequestID(r.Context())),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", fields...)
		return
	}
	h.logger.Warn(r.Context(), "request rejected", fields...)
}

// decodeRecommendRequest reads query parameters on GET and a JSON body on
// POST. It returns nil, nil for any other method.
func decodeRecommendRequest(r *http.Request) (*recommendRequest, error) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		return &recommendRequest{Query: q.Get("query"), URL: q.Get("url")}, nil
	case http.MethodPost:
		var req recommendRequest
		err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return &req, nil
	default:
		return nil, nil
	}
}
