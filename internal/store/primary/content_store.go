package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/jackc/pgx/v5"
)

// --- Content Management ---

func (s *StoreImpl) CreateContent(ctx context.Context, content *models.Content) error {
	query := `
		INSERT INTO content (
			title, body, status, metadata,
			word_count, reading_time, auto_tags, category, analyzed_at,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	prepareContent(content)

	err := s.db.QueryRow(ctx, query,
		content.Title, content.Body, content.Status, content.Metadata,
		content.WordCount, content.ReadingTime, content.AutoTags, content.Category, content.AnalyzedAt,
		now, now,
	).Scan(&content.ID, &content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		return mapPgError(err, "failed to insert content")
	}
	return nil
}

// prepareContent fills column defaults the schema marks NOT NULL.
func prepareContent(content *models.Content) {
	if content.Metadata == nil {
		content.Metadata = json.RawMessage("{}")
	}
	if content.AutoTags == nil {
		content.AutoTags = []string{}
	}
	if content.Status == "" {
		content.Status = models.ContentStatusDraft
	}
}

func (s *StoreImpl) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`
	content := &models.Content{}
	if err := scanContent(s.db.QueryRow(ctx, query, id), content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get content by id %d: %w", id, err)
	}
	return content, nil
}

// GetContentsByIDs returns contents in the order of ids; missing ids yield nil entries.
func (s *StoreImpl) GetContentsByIDs(ctx context.Context, ids []int64) ([]*models.Content, error) {
	if len(ids) == 0 {
		return []*models.Content{}, nil
	}

	query := `SELECT ` + contentColumns + ` FROM content WHERE id = ANY($1)`
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query contents by IDs: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*models.Content, len(ids))
	for rows.Next() {
		content := &models.Content{}
		if err := scanContent(rows, content); err != nil {
			return nil, fmt.Errorf("failed scanning content row: %w", err)
		}
		byID[content.ID] = content
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}

	results := make([]*models.Content, len(ids))
	for i, id := range ids {
		results[i] = byID[id]
	}
	return results, nil
}

// UpdateContent writes the editable and analysis fields of content.
func (s *StoreImpl) UpdateContent(ctx context.Context, content *models.Content) error {
	query := `
		UPDATE content SET
			title = $1,
			body = $2,
			status = $3,
			metadata = $4,
			word_count = $5,
			reading_time = $6,
			auto_tags = $7,
			category = $8,
			analyzed_at = $9,
			updated_at = $10
		WHERE id = $11
		RETURNING updated_at`

	prepareContent(content)
	err := s.db.QueryRow(ctx, query,
		content.Title, content.Body, content.Status, content.Metadata,
		content.WordCount, content.ReadingTime, content.AutoTags, content.Category, content.AnalyzedAt,
		time.Now(), content.ID,
	).Scan(&content.UpdatedAt)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to update content %d", content.ID))
	}
	return nil
}

// UpdateContentAnalysis stores a fresh analysis result without touching the editable fields.
func (s *StoreImpl) UpdateContentAnalysis(ctx context.Context, id int64, update store.AnalysisUpdate) error {
	query := `
		UPDATE content SET
			word_count = $1, reading_time = $2, auto_tags = $3, category = $4,
			analyzed_at = $5, updated_at = $6
		WHERE id = $7`
	autoTags := update.AutoTags
	if autoTags == nil {
		autoTags = []string{}
	}
	tag, err := s.db.Exec(ctx, query,
		update.WordCount, update.ReadingTime, autoTags, update.Category,
		update.AnalyzedAt, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis of content %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) UpdateContentCategory(ctx context.Context, id int64, category string) error {
	tag, err := s.db.Exec(ctx, `UPDATE content SET category = $1, updated_at = $2 WHERE id = $3`, category, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update category of content %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) DeleteContent(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("delete content: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM content_tags WHERE content_id = $1`, id); err != nil {
		return fmt.Errorf("delete content: failed to delete tag associations for content %d: %w", id, err)
	}
	commandTag, err := tx.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: failed to delete content %d: %w", id, err)
	}
	if commandTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("delete content: commit: %w", err)
	}
	return nil
}

var validSortColumns = map[string]string{
	"id":           "c.id",
	"title":        "c.title",
	"created_at":   "c.created_at",
	"updated_at":   "c.updated_at",
	"word_count":   "c.word_count",
	"reading_time": "c.reading_time",
}

// sortColumn accepts bare or "c."-prefixed names and falls back to created_at.
func sortColumn(sortBy string) string {
	if col, ok := validSortColumns[strings.TrimPrefix(strings.ToLower(sortBy), "c.")]; ok {
		return col
	}
	return "c.created_at"
}

func (s *StoreImpl) ListContent(ctx context.Context, opts store.ContentListOptions) ([]*models.Content, error) {
	var (
		joins []string
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(opts.Tags) > 0 {
		joins = append(joins, `JOIN content_tags ct ON c.id = ct.content_id JOIN tags t ON ct.tag_id = t.id`)
		where = append(where, "LOWER(t.name) = ANY("+arg(lowerAll(opts.Tags))+")")
	}
	if opts.Category != "" {
		where = append(where, "c.category = "+arg(opts.Category))
	}
	if opts.Status != "" {
		where = append(where, "c.status = "+arg(opts.Status))
	}

	sortOrder := strings.ToUpper(opts.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}
	limit, offset := opts.Limit, opts.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString(`SELECT DISTINCT c.id, c.title, c.body, c.status, c.metadata, c.word_count, c.reading_time,
		c.auto_tags, c.category, c.analyzed_at, c.created_at, c.updated_at FROM content c`)
	for _, j := range joins {
		b.WriteString(" " + j)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, c.id %s", sortColumn(opts.SortBy), sortOrder, sortOrder)
	b.WriteString(" LIMIT " + arg(limit) + " OFFSET " + arg(offset))

	rows, err := s.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	defer rows.Close()

	contents := []*models.Content{}
	for rows.Next() {
		content := &models.Content{}
		if err := scanContent(rows, content); err != nil {
			return nil, fmt.Errorf("failed to scan content row: %w", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}
	return contents, nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
