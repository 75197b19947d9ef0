package services

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/analysis"
	"inkwell/internal/models"
	"inkwell/internal/store"
	categorizer "inkwell/pkg/categorizer"

	log "github.com/sirupsen/logrus"
)

type ContentWithCategories struct {
	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"`
}

type CategorizationService struct {
	Categorizer  categorizer.ContentCategorizer
	TagService   *TagService
	taxonomy     analysis.TaxonomyRepository
	contentStore store.ContentStore
}

func NewCategorizationService(cat categorizer.ContentCategorizer, ts *TagService, taxonomy analysis.TaxonomyRepository, contentStore store.ContentStore) *CategorizationService {
	return &CategorizationService{
		Categorizer:  cat,
		TagService:   ts,
		taxonomy:     taxonomy,
		contentStore: contentStore,
	}
}

func (s *CategorizationService) categories(ctx context.Context) ([]models.Category, error) {
	if s.taxonomy == nil {
		return nil, fmt.Errorf("%w: no taxonomy repository configured", analysis.ErrTaxonomyUnavailable)
	}
	cats, err := s.taxonomy.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", analysis.ErrTaxonomyUnavailable, err)
	}
	return cats, nil
}

// CategorizeContent suggests a category and tags for the given text against
// the current taxonomy.
func (s *CategorizationService) CategorizeContent(ctx context.Context, title, body string, existingTags []string) (*ContentWithCategories, error) {
	if s.Categorizer == nil {
		return nil, errors.New("categorization service has no categorizer")
	}
	cats, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Categorizer.Categorize(ctx, categorizer.CategorizationRequest{
		Title:        title,
		Body:         body,
		ExistingTags: existingTags,
		Categories:   cats,
	})
	if err != nil {
		return nil, err
	}
	return &ContentWithCategories{
		Tags:       res.SuggestedTags,
		Category:   res.SuggestedCategory,
		Confidence: res.Confidence,
		Source:     res.Source,
	}, nil
}

// CategorizeStoredContent loads a content item and its tags and categorizes it.
func (s *CategorizationService) CategorizeStoredContent(ctx context.Context, contentID int64) (*ContentWithCategories, error) {
	content, err := s.contentStore.GetContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("get content %d: %w", contentID, err)
	}
	existing, err := s.TagService.GetContentTags(ctx, contentID)
	if err != nil {
		log.WithField("content_id", contentID).Warnf("categorize without existing tags: %v", err)
		existing = nil
	}
	return s.CategorizeContent(ctx, content.Title, content.Body, tagNames(existing))
}

func tagNames(tags []*models.Tag) []string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = tag.Name
	}
	return names
}

func (s *CategorizationService) BatchCategorize(ctx context.Context, contentIDs []int64) (map[int64]*ContentWithCategories, error) {
	results := make(map[int64]*ContentWithCategories, len(contentIDs))
	if len(contentIDs) == 0 {
		return results, nil
	}

	contents, err := s.contentStore.GetContentsByIDs(ctx, contentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for batch categorization: %w", err)
	}

	existingTagsMap, err := s.TagService.GetTagsForContents(ctx, contentIDs)
	if err != nil {
		log.Warnf("Failed to get existing tags for batch categorize: %v", err)
		existingTagsMap = make(map[int64][]*models.Tag)
	}

	for _, content := range contents {
		if content == nil {
			continue
		}
		cats, err := s.CategorizeContent(ctx, content.Title, content.Body, tagNames(existingTagsMap[content.ID]))
		if err != nil {
			if errors.Is(err, analysis.ErrTaxonomyUnavailable) {
				return nil, err
			}
			log.WithField("content_id", content.ID).Warnf("Failed to categorize content during batch: %v", err)
			continue
		}
		results[content.ID] = cats
	}
	return results, nil
}

// ApplyCategories stores the suggested category and attaches the suggested
// tags. With autoApply false it does nothing.
func (s *CategorizationService) ApplyCategories(ctx context.Context, contentID int64, cats *ContentWithCategories, autoApply bool) error {
	if cats == nil {
		return fmt.Errorf("no categories to apply")
	}
	if !autoApply {
		return nil
	}

	logger := log.WithFields(log.Fields{"content_id": contentID, "category": cats.Category, "tags": cats.Tags})
	if cats.Category != "" {
		if err := s.contentStore.UpdateContentCategory(ctx, contentID, cats.Category); err != nil {
			return fmt.Errorf("set category of content %d: %w", contentID, err)
		}
	}

	if len(cats.Tags) > 0 {
		if _, err := s.TagService.TagContent(ctx, contentID, cats.Tags); err != nil {
			logger.Errorf("Failed to apply tags: %v", err)
			return fmt.Errorf("apply tags to content %d: %w", contentID, err)
		}
	}
	logger.Info("categories applied")
	return nil
}
