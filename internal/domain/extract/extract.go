// Package extract derives QueryFeatures from resolved query text.
package extract

import (
	"slices"

	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/internal/domain/taxonomy"
	"github.com/okian/assessrec/internal/domain/textnorm"
)

// Option configures an Extractor.
type Option func(*Extractor)

// WithAllKeywords probes every keyword of a category (each reduced to its
// first stem) instead of only the first keyword.
func WithAllKeywords() Option {
	return func(e *Extractor) { e.allKeywords = true }
}

type probe struct {
	label string
	stems []string
}

// Extractor maps text to skill categories and a duration ceiling. It holds
// only data derived from the taxonomy and is safe for concurrent use.
type Extractor struct {
	allKeywords bool
	probes      []probe
}

// New builds an Extractor over tx.
//
// By default a category is detected when the stem of its first keyword
// appears among the query stems. The remaining keywords are only used by the
// catalog filter. This asymmetry is kept on purpose pending product review.
func New(tx *taxonomy.Taxonomy, opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	for _, c := range tx.Categories() {
		keywords := c.Keywords[:1]
		if e.allKeywords {
			keywords = c.Keywords
		}
		p := probe{label: c.Label}
		for _, kw := range keywords {
			if stem := textnorm.First(kw); stem != "" {
				p.stems = append(p.stems, stem)
			}
		}
		e.probes = append(e.probes, p)
	}
	return e
}

// Extract is a pure function of text and the taxonomy.
func (e *Extractor) Extract(text string) model.QueryFeatures {
	tokens := textnorm.Normalize(text)
	f := model.QueryFeatures{Tokens: tokens}
	for _, p := range e.probes {
		for _, stem := range p.stems {
			if slices.Contains(tokens, stem) {
				f.Skills = append(f.Skills, p.label)
				break
			}
		}
	}
	if d, ok := MatchMaxDuration(text); ok {
		f.MaxDuration = d
	}
	return f
}
