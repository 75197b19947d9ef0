package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/analysis"
	"inkwell/internal/models"
	"inkwell/internal/store"

	log "github.com/sirupsen/logrus"
)

const maxCategoryNameRunes = 100

type CreateCategoryParams struct {
	Name     string
	Keywords []string
	Position int
}

// TaxonomyService manages the categories the classifier matches against.
type TaxonomyService struct {
	store store.CategoryStore
}

func NewTaxonomyService(cs store.CategoryStore) *TaxonomyService {
	return &TaxonomyService{store: cs}
}

// normalizeCategoryKeywords lowercases, trims and dedupes keywords and rejects
// any that would never match a single token.
func normalizeCategoryKeywords(keywords []string) ([]string, error) {
	out := analysis.NormalizeKeywords(keywords)
	for _, kw := range out {
		if !analysis.IsSingleToken(kw) {
			return nil, models.NewValidationError("keywords", fmt.Sprintf("%q is not a single word", kw))
		}
	}
	return out, nil
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, params CreateCategoryParams) (*models.Category, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameRunes {
		return nil, models.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxCategoryNameRunes))
	}
	if strings.EqualFold(name, analysis.Uncategorized) {
		return nil, models.NewValidationError("name", fmt.Sprintf("%q is reserved", analysis.Uncategorized))
	}
	keywords, err := normalizeCategoryKeywords(params.Keywords)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{Name: name, Keywords: keywords, Position: params.Position}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}
	log.WithFields(log.Fields{"category": cat.Name, "keywords": len(keywords)}).Info("category created")
	return cat, nil
}

// ListCategories returns the taxonomy in classification order.
func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return cat, nil
}

// ReplaceKeywords swaps the whole keyword list of a category.
func (s *TaxonomyService) ReplaceKeywords(ctx context.Context, id int64, keywords []string) (*models.Category, error) {
	normalized, err := normalizeCategoryKeywords(keywords)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateCategoryKeywords(ctx, id, normalized); err != nil {
		return nil, fmt.Errorf("update keywords of category %d: %w", id, err)
	}
	return s.GetCategory(ctx, id)
}

func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	log.WithField("category_id", id).Info("category deleted")
	return nil
}
