// Package evalharness replays a labelled dataset against a recommender and
// reports Recall@3 and MAP@3 per case and on average.
package evalharness

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset errors.
var (
	ErrReadDataset    = errors.New("read dataset")
	ErrInvalidDataset = errors.New("invalid dataset")
)

// Case is one labelled request. Exactly one of Query or URL is normally set;
// a query wins when both are.
type Case struct {
	Name     string   `yaml:"name" json:"name"`
	Query    string   `yaml:"query,omitempty" json:"query,omitempty"`
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`
	Relevant []string `yaml:"relevant" json:"relevant"`
}

// Dataset is the on-disk evaluation file.
type Dataset struct {
	Cases []Case `yaml:"cases"`
}

// LoadDataset reads and validates a YAML dataset.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDataset, err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes and validates YAML bytes. Unnamed cases are named by
// their position.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if len(ds.Cases) == 0 {
		return nil, fmt.Errorf("%w: no cases", ErrInvalidDataset)
	}
	for i := range ds.Cases {
		c := &ds.Cases[i]
		if strings.TrimSpace(c.Name) == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if strings.TrimSpace(c.Query) == "" && strings.TrimSpace(c.URL) == "" {
			return nil, fmt.Errorf("%w: case %q has neither query nor url", ErrInvalidDataset, c.Name)
		}
	}
	return &ds, nil
}
