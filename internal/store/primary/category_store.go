package primary

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/util"
)

// --- Category Management ---

const categoryColumns = `id, name, slug, keywords, position, created_at, updated_at`

func scanCategory(row rowScanner, c *models.Category) error {
	return row.Scan(&c.ID, &c.Name, &c.Slug, &c.Keywords, &c.Position, &c.CreatedAt, &c.UpdatedAt)
}

func (s *StoreImpl) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = util.Slugify(category.Name)
	}
	if category.Keywords == nil {
		category.Keywords = []string{}
	}
	query := `
		INSERT INTO categories (name, slug, keywords, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id, created_at, updated_at`
	err := s.db.QueryRow(ctx, query,
		category.Name, category.Slug, category.Keywords, category.Position, time.Now(),
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return mapPgError(err, fmt.Sprintf("failed to insert category '%s'", category.Name))
	}
	return nil
}

func (s *StoreImpl) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c := &models.Category{}
	if err := scanCategory(s.db.QueryRow(ctx, query, id), c); err != nil {
		return nil, mapPgError(err, fmt.Sprintf("failed to get category %d", id))
	}
	return c, nil
}

// ListAll returns the whole taxonomy ordered by position, then id.
func (s *StoreImpl) ListAll(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY position ASC, id ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (s *StoreImpl) UpdateCategoryKeywords(ctx context.Context, id int64, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	tag, err := s.db.Exec(ctx, `UPDATE categories SET keywords = $1, updated_at = $2 WHERE id = $3`, keywords, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update keywords of category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
