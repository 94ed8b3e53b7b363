// Package evaluate computes ranking-quality metrics against a ground-truth
// set of relevant assessment names.
package evaluate

import (
	"errors"
	"fmt"
)

// K is the cutoff used by Evaluate.
const K = 3

// ErrDegenerateInput is returned when the relevant set is empty. Recall is
// undefined in that case and is never coerced to zero.
var ErrDegenerateInput = errors.New("evaluate: relevant set is empty")

// Result holds Recall@K and MAP@K for one ranked list.
type Result struct {
	Recall float64 `json:"recall"`
	MAP    float64 `json:"map"`
}

// Evaluate scores recommended names against relevant with K = 3.
func Evaluate(recommended, relevant []string) (Result, error) {
	return EvaluateAtK(recommended, relevant, K)
}

// EvaluateAtK computes
//
//	recall = |relevant ∩ top-k| / min(|relevant|, k)
//	map    = Σ_{relevant hits at 1-based i} (hits so far / i) / hits
//
// with map = 0 when nothing relevant appears in the top k.
func EvaluateAtK(recommended, relevant []string, k int) (Result, error) {
	if k <= 0 {
		return Result{}, fmt.Errorf("evaluate: k must be positive, got %d", k)
	}
	rel := make(map[string]struct{}, len(relevant))
	for _, name := range relevant {
		rel[name] = struct{}{}
	}
	if len(rel) == 0 {
		return Result{}, ErrDegenerateInput
	}

	top := recommended
	if len(top) > k {
		top = top[:k]
	}

	var hits int
	var ap float64
	for i, name := range top {
		if _, ok := rel[name]; ok {
			hits++
			ap += float64(hits) / float64(i+1)
		}
	}

	res := Result{Recall: float64(hits) / float64(min(len(rel), k))}
	if hits > 0 {
		res.MAP = ap / float64(hits)
	}
	return res, nil
}

// Mean averages results. ok is false for an empty input.
func Mean(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	var sum Result
	for _, r := range results {
		sum.Recall += r.Recall
		sum.MAP += r.MAP
	}
	n := float64(len(results))
	return Result{Recall: sum.Recall / n, MAP: sum.MAP / n}, true
}
