package primary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/util"

	"github.com/jackc/pgx/v5"
)

// --- Tag Management ---

var _ store.TagStore = (*StoreImpl)(nil)

const tagColumns = `id, name, slug, created_at, updated_at`

func scanTag(row rowScanner) (*models.Tag, error) {
	tag := &models.Tag{}
	if err := row.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTagsByName resolves names case-insensitively, creating the
// missing ones. Blank and repeated names are skipped.
func (s *StoreImpl) GetOrCreateTagsByName(ctx context.Context, names []string) ([]*models.Tag, error) {
	tags := []*models.Tag{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		tag, err := s.getOrCreateTag(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *StoreImpl) getOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE LOWER(name) = LOWER($1)`
	tag, err := scanTag(s.db.QueryRow(ctx, query, name))
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get tag '%s': %w", name, err)
	}

	// Concurrent creators converge on the same row.
	insert := `
		INSERT INTO tags (name, slug, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (slug) DO UPDATE SET updated_at = tags.updated_at
		RETURNING ` + tagColumns
	tag, err = scanTag(s.db.QueryRow(ctx, insert, name, util.Slugify(name), time.Now()))
	if err != nil {
		return nil, mapPgError(err, fmt.Sprintf("failed to create tag '%s'", name))
	}
	return tag, nil
}

func (s *StoreImpl) ListTags(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags ORDER BY name ASC LIMIT $1 OFFSET $2`
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

func (s *StoreImpl) AddTagsToContent(ctx context.Context, contentID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now()
	for _, tagID := range tagIDs {
		batch.Queue(`
			INSERT INTO content_tags (content_id, tag_id, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`, contentID, tagID, now)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapPgError(err, fmt.Sprintf("failed to add tags to content %d", contentID))
	}
	return nil
}

func (s *StoreImpl) RemoveTagFromContent(ctx context.Context, contentID, tagID int64) error {
	query := `DELETE FROM content_tags WHERE content_id = $1 AND tag_id = $2`
	_, err := s.db.Exec(ctx, query, contentID, tagID)
	if err != nil {
		return fmt.Errorf("failed to remove tag %d from content %d: %w", tagID, contentID, err)
	}
	return nil
}

func (s *StoreImpl) GetContentTags(ctx context.Context, contentID int64) ([]*models.Tag, error) {
	byContent, err := s.GetTagsForContents(ctx, []int64{contentID})
	if err != nil {
		return nil, err
	}
	return byContent[contentID], nil
}

// GetTagsForContents returns the tags of each content id; every requested id
// gets an entry, possibly empty.
func (s *StoreImpl) GetTagsForContents(ctx context.Context, contentIDs []int64) (map[int64][]*models.Tag, error) {
	tagsByContentID := make(map[int64][]*models.Tag, len(contentIDs))
	if len(contentIDs) == 0 {
		return tagsByContentID, nil
	}

	query := `
		SELECT ct.content_id, t.id, t.name, t.slug, t.created_at, t.updated_at
		FROM tags t
		JOIN content_tags ct ON t.id = ct.tag_id
		WHERE ct.content_id = ANY($1)
		ORDER BY ct.content_id, t.name ASC`

	rows, err := s.db.Query(ctx, query, contentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags for contents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var contentID int64
		tag := &models.Tag{}
		if err := rows.Scan(&contentID, &tag.ID, &tag.Name, &tag.Slug, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tagsByContentID[contentID] = append(tagsByContentID[contentID], tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag rows: %w", err)
	}

	for _, id := range contentIDs {
		if _, exists := tagsByContentID[id]; !exists {
			tagsByContentID[id] = []*models.Tag{}
		}
	}
	return tagsByContentID, nil
}
