// Package filter narrows the catalog using extracted query features.
package filter

import (
	"context"
	"strings"

	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/internal/domain/taxonomy"
	"github.com/okian/assessrec/pkg/logger"
)

// Rule is a single order-preserving predicate over catalog records.
type Rule interface {
	Name() string
	Keep(r model.AssessmentRecord) bool
}

// Step describes the result of executing one rule.
type Step struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

// Report lists the executed steps in order.
type Report struct {
	Steps []Step `json:"steps"`
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets the logger used for per-step debug lines.
func WithLogger(l logger.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.log = l
		}
	}
}

// Filter applies the duration and skill rules. It keeps no per-call state.
type Filter struct {
	tx  *taxonomy.Taxonomy
	log logger.Logger
}

// New creates a Filter over the taxonomy used for skill keywords.
func New(tx *taxonomy.Taxonomy, opts ...Option) *Filter {
	f := &Filter{tx: tx, log: logger.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Rules returns the rules implied by features, in execution order.
func (f *Filter) Rules(features model.QueryFeatures) []Rule {
	return []Rule{
		DurationRule{Max: features.MaxDuration},
		NewSkillRule(f.tx, features.Skills),
	}
}

// Apply runs every rule over records and returns the survivors in their
// original relative order. The result may be empty; substituting a fallback
// set is the caller's decision.
func (f *Filter) Apply(ctx context.Context, records []model.AssessmentRecord, features model.QueryFeatures) ([]model.AssessmentRecord, Report) {
	var report Report
	current := records
	for _, rule := range f.Rules(features) {
		next := make([]model.AssessmentRecord, 0, len(current))
		for _, r := range current {
			if rule.Keep(r) {
				next = append(next, r)
			}
		}
		step := Step{
			Name:    rule.Name(),
			Initial: len(current),
			Dropped: len(current) - len(next),
			Left:    len(next),
		}
		report.Steps = append(report.Steps, step)
		f.log.Debug(ctx, "filter step",
			logger.String("name", step.Name),
			logger.Int("initial", step.Initial),
			logger.Int("dropped", step.Dropped),
			logger.Int("left", step.Left),
		)
		current = next
	}
	return current, report
}

// DurationRule drops records whose leading duration integer exceeds Max.
// A non-positive Max disables the rule; unparseable durations always pass.
type DurationRule struct {
	Max int
}

// Name implements Rule.
func (DurationRule) Name() string { return "duration" }

// Keep implements Rule.
func (d DurationRule) Keep(r model.AssessmentRecord) bool {
	if d.Max <= 0 {
		return true
	}
	n, ok := r.Minutes()
	if !ok {
		return true
	}
	return n <= d.Max
}

// SkillRule keeps records whose name or test type contains, as a raw
// case-insensitive substring, any keyword of any matched category.
type SkillRule struct {
	active   bool
	keywords []string
}

// NewSkillRule collects the lower-cased keywords of skills. Unknown labels
// contribute nothing.
func NewSkillRule(tx *taxonomy.Taxonomy, skills []string) SkillRule {
	var kws []string
	for _, label := range skills {
		for _, kw := range tx.Keywords(label) {
			kws = append(kws, strings.ToLower(kw))
		}
	}
	return SkillRule{active: len(skills) > 0, keywords: kws}
}

// Name implements Rule.
func (SkillRule) Name() string { return "skills" }

// Keep implements Rule. With no matched skills every record passes.
func (s SkillRule) Keep(r model.AssessmentRecord) bool {
	if !s.active {
		return true
	}
	text := strings.ToLower(r.SearchText())
	for _, kw := range s.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
