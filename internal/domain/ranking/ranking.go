// Package ranking orders candidates by TF-IDF similarity to the query.
//
// Every call builds its own corpus of 1+N documents: the query first, then
// each candidate's name and test type. Stopwords are dropped from every
// document, so a query stopword never matches. Document frequencies are
// positional and never shared between calls.
package ranking

import (
	"math"
	"sort"

	"github.com/okian/assessrec/internal/domain/model"
	"github.com/okian/assessrec/internal/domain/textnorm"
)

type document map[string]int

func newDocument(terms []string) document {
	d := make(document, len(terms))
	for _, t := range terms {
		if isStopword(t) {
			continue
		}
		d[t]++
	}
	return d
}

// corpus is request-local; do not reuse it across calls.
type corpus struct {
	docs []document
	df   map[string]int
}

func newCorpus(query []string, candidates []model.AssessmentRecord) *corpus {
	c := &corpus{
		docs: make([]document, 0, len(candidates)+1),
		df:   make(map[string]int),
	}
	c.add(query)
	for _, r := range candidates {
		c.add(textnorm.Normalize(r.SearchText()))
	}
	return c
}

func (c *corpus) add(terms []string) {
	d := newDocument(terms)
	for t := range d {
		c.df[t]++
	}
	c.docs = append(c.docs, d)
}

// idf is 1 + ln(N / (1 + df)). It stays positive because df <= N.
func (c *corpus) idf(term string) float64 {
	n := float64(len(c.docs))
	return 1 + math.Log(n/float64(1+c.df[term]))
}

// score sums tf(t, doc)·idf(t) over the query terms. Repeated query terms
// contribute once per occurrence.
func (c *corpus) score(query []string, doc int) float64 {
	d := c.docs[doc]
	var s float64
	for _, t := range query {
		if tf := d[t]; tf > 0 {
			s += float64(tf) * c.idf(t)
		}
	}
	return s
}

// Rank scores every candidate against queryText and returns them sorted by
// descending score. Equal scores keep candidate order.
func Rank(candidates []model.AssessmentRecord, queryText string) []model.ScoredCandidate {
	query := textnorm.Normalize(queryText)
	c := newCorpus(query, candidates)

	out := make([]model.ScoredCandidate, len(candidates))
	for i, r := range candidates {
		out[i] = model.ScoredCandidate{Record: r, Score: c.score(query, i+1)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// TopK returns at most k leading candidates.
func TopK(scored []model.ScoredCandidate, k int) []model.ScoredCandidate {
	if k < 0 {
		k = 0
	}
	if len(scored) > k {
		return scored[:k]
	}
	return scored
}
