package evalharness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/model"
)

// Recommender answers one request. *service.Service satisfies it directly;
// HTTPRecommender talks to a running server.
type Recommender interface {
	RecommendRequest(ctx context.Context, req service.Request) ([]model.AssessmentRecord, error)
}

// HTTPRecommender calls POST /api/recommend on a remote server.
type HTTPRecommender struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRecommender creates a client for the server at baseURL.
func NewHTTPRecommender(baseURL string, timeout time.Duration) *HTTPRecommender {
	return &HTTPRecommender{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CheckHealth verifies the server answers /healthz.
func (h *HTTPRecommender) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// RecommendRequest implements Recommender.
func (h *HTTPRecommender) RecommendRequest(ctx context.Context, in service.Request) ([]model.AssessmentRecord, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/recommend", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recommend request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error != "" {
			return nil, fmt.Errorf("server returned %d %s: %s", resp.StatusCode, ae.Error, ae.Message)
		}
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var out struct {
		Recommendations []model.AssessmentRecord `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Recommendations, nil
}
