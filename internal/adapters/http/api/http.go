// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// RecommendRequest resolves a query or URL into ranked assessments.
	RecommendRequest(ctx context.Context, req service.Request) ([]model.AssessmentRecord, error)
	// Explain returns the full pipeline trace for req.
	Explain(ctx context.Context, req service.Request) (*service.Explanation, error)
	// Catalog returns the current assessment catalog.
	Catalog(ctx context.Context) ([]model.AssessmentRecord, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
	catalogHandler   *CatalogHandler

	logger logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendHandler = NewRecommendHandler(deps, s.logger)
	s.catalogHandler = NewCatalogHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/recommend", MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommend"))
	mux.HandleFunc("/api/explain", MetricsMiddleware(s.recommendHandler.HandleExplain, "explain"))
	mux.HandleFunc("/api/catalog", MetricsMiddleware(s.catalogHandler.HandleCatalog, "catalog"))
}

// methodNotAllowed answers 405 and lists the accepted methods.
func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	allow := strings.Join(allowed, ", ")
	w.Header().Set("Allow", allow)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Error:   "method_not_allowed",
		Message: "allowed methods: " + allow,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
