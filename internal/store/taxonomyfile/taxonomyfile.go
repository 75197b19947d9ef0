// Package taxonomyfile reads a category taxonomy from a YAML file.
package taxonomyfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/util"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidTaxonomy indicates the file parsed but describes an unusable taxonomy.
	ErrInvalidTaxonomy = errors.New("invalid taxonomy file")
	// ErrReadOnly is returned by the write methods; edit the file instead.
	ErrReadOnly = errors.New("taxonomy file is read-only")
)

type document struct {
	Categories []models.Category `yaml:"categories"`
}

// Taxonomy is a read-only taxonomy held in memory.
type Taxonomy struct {
	categories []models.Category
}

var _ store.CategoryStore = (*Taxonomy)(nil)

// Load reads and validates the taxonomy file at path. Categories keep file
// order; ids are assigned from 1 in that order.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTaxonomy, err)
	}

	seen := make(map[string]struct{}, len(doc.Categories))
	for i := range doc.Categories {
		c := &doc.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrInvalidTaxonomy, i+1)
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, c.Name)
		}
		seen[key] = struct{}{}

		c.ID = int64(i + 1)
		if c.Slug == "" {
			c.Slug = util.Slugify(c.Name)
		}
		if c.Keywords == nil {
			c.Keywords = []string{}
		}
		if c.Position == 0 {
			c.Position = i
		}
	}
	return &Taxonomy{categories: doc.Categories}, nil
}

// ListAll returns a copy of the categories in file order.
func (t *Taxonomy) ListAll(_ context.Context) ([]models.Category, error) {
	out := make([]models.Category, len(t.categories))
	for i, c := range t.categories {
		keywords := make([]string, len(c.Keywords))
		copy(keywords, c.Keywords)
		c.Keywords = keywords
		out[i] = c
	}
	return out, nil
}

func (t *Taxonomy) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	for _, c := range t.categories {
		if c.ID == id {
			c.Keywords = append([]string{}, c.Keywords...)
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *Taxonomy) CreateCategory(context.Context, *models.Category) error {
	return ErrReadOnly
}

func (t *Taxonomy) UpdateCategoryKeywords(context.Context, int64, []string) error {
	return ErrReadOnly
}

func (t *Taxonomy) DeleteCategory(context.Context, int64) error {
	return ErrReadOnly
}
