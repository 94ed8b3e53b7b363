// Package taxonomy holds the skill taxonomy: an ordered mapping from category
// label to keyword strings. A Taxonomy is immutable once built and safe for
// concurrent reads.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation errors.
var (
	ErrEmptyLabel     = errors.New("taxonomy: empty category label")
	ErrNoKeywords     = errors.New("taxonomy: category has no keywords")
	ErrDuplicateLabel = errors.New("taxonomy: duplicate category label")
)

// Category is one skill category and its keywords in declaration order.
type Category struct {
	Label    string
	Keywords []string
}

// Taxonomy is an ordered, validated set of categories.
type Taxonomy struct {
	categories []Category
	index      map[string]int
}

// New validates categories and builds a Taxonomy keeping their order.
func New(categories []Category) (*Taxonomy, error) {
	t := &Taxonomy{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for _, c := range categories {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			return nil, ErrEmptyLabel
		}
		if _, dup := t.index[label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		keywords := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoKeywords, label)
		}
		t.index[label] = len(t.categories)
		t.categories = append(t.categories, Category{Label: label, Keywords: keywords})
	}
	return t, nil
}

// FromMap builds a Taxonomy from a label -> keywords map. Maps carry no
// order, so categories are sorted by label.
func FromMap(m map[string][]string) (*Taxonomy, error) {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	categories := make([]Category, 0, len(labels))
	for _, label := range labels {
		categories = append(categories, Category{Label: label, Keywords: m[label]})
	}
	return New(categories)
}

// Default returns the built-in taxonomy.
func Default() *Taxonomy {
	t, err := New(defaultCategories)
	if err != nil {
		panic(err)
	}
	return t
}

// Categories returns a copy of the categories in order.
func (t *Taxonomy) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, c := range t.categories {
		out[i] = Category{Label: c.Label, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}

// Labels returns the category labels in order.
func (t *Taxonomy) Labels() []string {
	out := make([]string, len(t.categories))
	for i, c := range t.categories {
		out[i] = c.Label
	}
	return out
}

// Keywords returns the raw keywords of label, or nil if it is unknown.
func (t *Taxonomy) Keywords(label string) []string {
	i, ok := t.index[label]
	if !ok {
		return nil
	}
	return append([]string(nil), t.categories[i].Keywords...)
}

// Len returns the number of categories.
func (t *Taxonomy) Len() int { return len(t.categories) }

var defaultCategories = []Category{ //nolint:gochecknoglobals // static taxonomy
	{Label: "programming", Keywords: []string{
		"coding", "developer", "software", "engineer", "javascript",
		"python", "java", "html", "css", "web",
	}},
	{Label: "data analysis", Keywords: []string{
		"data", "analytics", "statistics", "analysis", "sql",
		"database", "excel", "visualization", "reporting",
	}},
	{Label: "leadership", Keywords: []string{
		"leadership", "management", "supervisor", "team lead",
		"director", "executive", "manage",
	}},
	{Label: "communication", Keywords: []string{
		"communication", "writing", "speaking", "presentation",
		"interpersonal", "verbal", "written",
	}},
	{Label: "customer service", Keywords: []string{
		"customer", "service", "support", "client", "satisfaction", "helpdesk",
	}},
	{Label: "sales", Keywords: []string{
		"sales", "selling", "business development", "account",
		"revenue", "quota", "negotiate",
	}},
	{Label: "project management", Keywords: []string{
		"project", "management", "agile", "scrum", "waterfall",
		"planning", "coordination",
	}},
}
