// Package questions loads the master question list. Questions are
// addressed by their stable index or key, never by matching prompt text.
package questions

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/carelog/internal/models"
)

//go:embed questions.yaml
var defaultYAML []byte

type Catalog struct {
	questions []models.Question
	byKey     map[string]int
}

type file struct {
	Questions []models.Question `yaml:"questions"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(defaultYAML)
	})
	return defaultCatalog, defaultErr
}

// Load parses and validates a YAML question list. Indices must be
// contiguous from 0 and listed in order; keys must be unique.
func Load(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse question list: %w", err)
	}

	c := &Catalog{
		questions: f.Questions,
		byKey:     make(map[string]int, len(f.Questions)),
	}
	for i, q := range f.Questions {
		if q.Index != i {
			return nil, fmt.Errorf("question %q has index %d, expected %d", q.Key, q.Index, i)
		}
		key := strings.TrimSpace(q.Key)
		if key == "" {
			return nil, fmt.Errorf("question %d has no key", i)
		}
		if strings.TrimSpace(q.Prompt) == "" {
			return nil, fmt.Errorf("question %q has no prompt", key)
		}
		if prev, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate question key %q (indices %d and %d)", key, prev, i)
		}
		c.byKey[key] = i
	}
	return c, nil
}

// Len returns the length of the master list.
func (c *Catalog) Len() int {
	return len(c.questions)
}

func (c *Catalog) At(index int) (models.Question, bool) {
	if index < 0 || index >= len(c.questions) {
		return models.Question{}, false
	}
	return c.questions[index], true
}

func (c *Catalog) ByKey(key string) (models.Question, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

// All returns a copy of the list in index order.
func (c *Catalog) All() []models.Question {
	out := make([]models.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Sections returns section names in order of first appearance.
func (c *Catalog) Sections() []string {
	var sections []string
	seen := make(map[string]bool)
	for _, q := range c.questions {
		if !seen[q.Section] {
			seen[q.Section] = true
			sections = append(sections, q.Section)
		}
	}
	return sections
}

// InSection returns the questions of one section in index order.
func (c *Catalog) InSection(section string) []models.Question {
	var out []models.Question
	for _, q := range c.questions {
		if q.Section == section {
			out = append(out, q)
		}
	}
	return out
}
