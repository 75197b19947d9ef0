// Package sqlite keeps the category taxonomy in a local SQLite file, for
// deployments that analyze content without a PostgreSQL primary store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/util"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3" // registers sqlite3://
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// TaxonomyStore implements store.CategoryStore on a SQLite database file.
type TaxonomyStore struct {
	db *sql.DB
}

var _ store.CategoryStore = (*TaxonomyStore)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations. path must name a file; in-memory databases are not supported.
func Open(path string) (*TaxonomyStore, error) {
	if path == "" {
		return nil, errors.New("sqlite taxonomy path cannot be empty")
	}
	if err := migrateUp(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database %s: %w", path, err)
	}
	return &TaxonomyStore{db: db}, nil
}

func migrateUp(path string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("create sqlite migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate sqlite taxonomy: %w", err)
	}
	return nil
}

func (s *TaxonomyStore) Close() error {
	return s.db.Close()
}

func (s *TaxonomyStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapSQLiteError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
		}
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *TaxonomyStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = util.Slugify(category.Name)
	}
	if category.Keywords == nil {
		category.Keywords = []string{}
	}
	keywords, err := json.Marshal(category.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, slug, keywords, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.Name, category.Slug, string(keywords), category.Position, now, now)
	if err != nil {
		return mapSQLiteError(err, fmt.Sprintf("insert category '%s'", category.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read category id: %w", err)
	}
	category.ID = id
	category.CreatedAt = now
	category.UpdatedAt = now
	return nil
}

const categoryColumns = `id, name, slug, keywords, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner, c *models.Category) error {
	var keywords string
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &keywords, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return err
	}
	c.Keywords = []string{}
	if err := json.Unmarshal([]byte(keywords), &c.Keywords); err != nil {
		return fmt.Errorf("decode keywords of category %d: %w", c.ID, err)
	}
	return nil
}

func (s *TaxonomyStore) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c := &models.Category{}
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	if err := scanCategory(row, c); err != nil {
		return nil, mapSQLiteError(err, fmt.Sprintf("get category %d", id))
	}
	return c, nil
}

// ListAll returns the taxonomy ordered by position, then id.
func (s *TaxonomyStore) ListAll(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY position ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

func (s *TaxonomyStore) UpdateCategoryKeywords(ctx context.Context, id int64, keywords []string) error {
	if keywords == nil {
		keywords = []string{}
	}
	encoded, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET keywords = ?, updated_at = ? WHERE id = ?`,
		string(encoded), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update keywords of category %d: %w", id, err)
	}
	return requireRow(res)
}

func (s *TaxonomyStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
