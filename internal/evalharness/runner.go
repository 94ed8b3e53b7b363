package evalharness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	service "github.com/okian/assessrec/internal/app"
	"github.com/okian/assessrec/internal/domain/evaluate"
	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const defaultConcurrency = 4

// Case statuses.
const (
	StatusOK         = "ok"
	StatusDegenerate = "degenerate"
	StatusFailed     = "failed"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name        string           `json:"name"`
	Status      string           `json:"status"`
	Recommended []string         `json:"recommended,omitempty"`
	Relevant    []string         `json:"relevant"`
	Metrics     *evaluate.Result `json:"metrics,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Summary aggregates a run. Mean is nil when no case could be scored.
type Summary struct {
	Cases      []CaseResult     `json:"cases"`
	Mean       *evaluate.Result `json:"mean,omitempty"`
	Scored     int              `json:"scored"`
	Degenerate int              `json:"degenerate"`
	Failed     int              `json:"failed"`
	StartTime  time.Time        `json:"startTime"`
	Duration   time.Duration    `json:"durationNs"`
}

// Runner evaluates datasets against a Recommender.
type Runner struct {
	rec         Recommender
	concurrency int
	logger      logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds how many cases run at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner for rec.
func NewRunner(rec Recommender, opts ...Option) *Runner {
	r := &Runner{rec: rec, concurrency: defaultConcurrency, logger: logger.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every case. A failing case is recorded, not returned; only
// context cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, ds *Dataset) (*Summary, error) {
	sum := &Summary{StartTime: time.Now(), Cases: make([]CaseResult, len(ds.Cases))}

	r.logger.Info(ctx, "starting evaluation",
		logger.Int("cases", len(ds.Cases)),
		logger.Int("concurrency", r.concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, c := range ds.Cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sum.Cases[i] = r.runCase(gctx, c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation aborted: %w", err)
	}

	var scored []evaluate.Result
	for _, cr := range sum.Cases {
		switch cr.Status {
		case StatusOK:
			scored = append(scored, *cr.Metrics)
		case StatusDegenerate:
			sum.Degenerate++
		default:
			sum.Failed++
		}
	}
	sum.Scored = len(scored)
	if mean, ok := evaluate.Mean(scored); ok {
		sum.Mean = &mean
	}
	sum.Duration = time.Since(sum.StartTime)

	fields := []logger.Field{
		logger.Int("scored", sum.Scored),
		logger.Int("degenerate", sum.Degenerate),
		logger.Int("failed", sum.Failed),
		logger.Duration("duration", sum.Duration),
	}
	if sum.Mean != nil {
		fields = append(fields,
			logger.Float64("meanRecall", sum.Mean.Recall),
			logger.Float64("meanMAP", sum.Mean.MAP),
		)
	}
	r.logger.Info(ctx, "evaluation finished", fields...)
	return sum, nil
}

func (r *Runner) runCase(ctx context.Context, c Case) CaseResult {
	res := CaseResult{Name: c.Name, Relevant: c.Relevant}

	recs, err := r.rec.RecommendRequest(ctx, service.Request{Query: c.Query, URL: c.URL})
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		r.logger.Warn(ctx, "case failed", logger.String("case", c.Name), logger.Error(err))
		return res
	}
	res.Recommended = names(recs)

	m, err := evaluate.Evaluate(res.Recommended, c.Relevant)
	switch {
	case errors.Is(err, evaluate.ErrDegenerateInput):
		res.Status = StatusDegenerate
		res.Error = err.Error()
	case err != nil:
		res.Status = StatusFailed
		res.Error = err.Error()
	default:
		res.Status = StatusOK
		res.Metrics = &m
		r.logger.Debug(ctx, "case scored",
			logger.String("case", c.Name),
			logger.Float64("recall", m.Recall),
			logger.Float64("map", m.MAP),
		)
	}
	return res
}

func names(recs []model.AssessmentRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

// WriteSummary writes sum as indented JSON to path, creating parent
// directories.
func WriteSummary(path string, sum *Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
