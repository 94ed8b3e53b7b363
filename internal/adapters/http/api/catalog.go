package api

import (
	"net/http"

	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
)

type catalogResponse struct {
	Count       int                      `json:"count"`
	Assessments []model.AssessmentRecord `json:"assessments"`
}

// CatalogHandler exposes the cached catalog.
type CatalogHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps Dependencies, l logger.Logger) *CatalogHandler {
	if l == nil {
		l = logger.NewNop()
	}
	return &CatalogHandler{deps: deps, logger: l}
}

// HandleCatalog handles GET /api/catalog.
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	const op = "api.catalog"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	recs, err := h.deps.Catalog(r.Context())
	if err != nil {
		status := writeError(w, Wrap(op, err))
		h.logger.Error(r.Context(), "catalog request failed",
			logger.Int("status", status),
			logger.String("request_id", RequestID(r.Context())),
			logger.Error(err),
		)
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse{Count: len(recs), Assessments: recs})
}
