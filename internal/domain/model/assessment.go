// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
)

// Support is the Yes/No flag used for remote testing and adaptive support.
type Support string

// Support values.
const (
	SupportYes Support = "Yes"
	SupportNo  Support = "No"
)

// ParseSupport maps loosely formatted flags ("yes", "true", "1", "✓") to a
// Support value. Anything unrecognised is No.
func ParseSupport(s string) Support {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "✓", "●":
		return SupportYes
	default:
		return SupportNo
	}
}

// AssessmentRecord is an immutable catalog entry.
// JSON field names mirror the public API payload.
type AssessmentRecord struct {
	Name                 string  `json:"name"`
	URL                  string  `json:"url"`
	RemoteTestingSupport Support `json:"remoteTestingSupport"`
	AdaptiveSupport      Support `json:"adaptiveSupport"`
	Duration             string  `json:"duration"` // e.g. "35 minutes"
	TestType             string  `json:"testType"`
}

// Minutes returns the leading integer of the duration string. The unit is
// ignored. ok is false when the string does not start with a number.
func (r AssessmentRecord) Minutes() (n int, ok bool) {
	return LeadingInt(r.Duration)
}

// SearchText is the text a record is matched and ranked on.
func (r AssessmentRecord) SearchText() string {
	return r.Name + " " + r.TestType
}

// LeadingInt parses an optionally signed integer at the start of s after
// trimming surrounding whitespace. Trailing text is ignored.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// QueryFeatures are derived once per request from the resolved query text.
type QueryFeatures struct {
	// Skills holds matched taxonomy labels in taxonomy order.
	Skills []string `json:"skills"`

	// MaxDuration is the duration ceiling in minutes. Zero means unconstrained.
	MaxDuration int `json:"maxDuration,omitempty"`

	// Tokens is the normalized term sequence of the query.
	Tokens []string `json:"tokens"`
}

// HasMaxDuration reports whether a duration ceiling was extracted.
func (f QueryFeatures) HasMaxDuration() bool { return f.MaxDuration > 0 }

// ScoredCandidate pairs a record with its relevance score.
type ScoredCandidate struct {
	Record AssessmentRecord `json:"record"`
	Score  float64          `json:"score"`
}

// Records projects scored candidates back to their records, keeping order.
func Records(scored []ScoredCandidate) []AssessmentRecord {
	out := make([]AssessmentRecord, len(scored))
	for i, sc := range scored {
		out[i] = sc.Record
	}
	return out
}
