package services

import (
	"context"
	"fmt"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

type TagService struct {
	store store.TagStore
}

func NewTagService(ts store.TagStore) *TagService {
	return &TagService{store: ts}
}

// TagContent associates the given tag names with the specified content.
// It creates any missing tags, then links them to the content.
func (ts *TagService) TagContent(ctx context.Context, contentID int64, tagNames []string) ([]*models.Tag, error) {
	if len(tagNames) == 0 {
		return []*models.Tag{}, nil
	}

	tags, err := ts.store.GetOrCreateTagsByName(ctx, tagNames)
	if err != nil {
		return nil, fmt.Errorf("get or create tags: %w", err)
	}

	tagIDs := make([]int64, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
	}

	err = ts.store.AddTagsToContent(ctx, contentID, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("add tags to content: %w", err)
	}

	return tags, nil
}

// ReplaceContentTags makes tagNames the exact tag set of the content.
func (ts *TagService) ReplaceContentTags(ctx context.Context, contentID int64, tagNames []string) ([]*models.Tag, error) {
	current, err := ts.GetContentTags(ctx, contentID)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]struct{}, len(tagNames))
	for _, name := range tagNames {
		keep[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	for _, tag := range current {
		if _, ok := keep[strings.ToLower(tag.Name)]; ok {
			continue
		}
		if err := ts.store.RemoveTagFromContent(ctx, contentID, tag.ID); err != nil {
			return nil, fmt.Errorf("remove tag %q: %w", tag.Name, err)
		}
	}
	if _, err := ts.TagContent(ctx, contentID, tagNames); err != nil {
		return nil, err
	}
	return ts.GetContentTags(ctx, contentID)
}

// GetContentTags retrieves all tags associated with a specific content ID.
func (ts *TagService) GetContentTags(ctx context.Context, contentID int64) ([]*models.Tag, error) {
	tags, err := ts.store.GetContentTags(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for content ID %d from store: %w", contentID, err)
	}
	if tags == nil {
		return []*models.Tag{}, nil
	}
	return tags, nil
}

// GetTagsForContents retrieves tags for several content items at once.
func (ts *TagService) GetTagsForContents(ctx context.Context, contentIDs []int64) (map[int64][]*models.Tag, error) {
	tags, err := ts.store.GetTagsForContents(ctx, contentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for contents: %w", err)
	}
	return tags, nil
}

// ListTags pages through all tags by name.
func (ts *TagService) ListTags(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	tags, err := ts.store.ListTags(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}
