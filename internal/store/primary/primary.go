package primary

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreImpl implements the content, tag, category and job stores on PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

var (
	_ store.ContentStore  = (*StoreImpl)(nil)
	_ store.TagStore      = (*StoreImpl)(nil)
	_ store.CategoryStore = (*StoreImpl)(nil)
	_ store.JobStore      = (*StoreImpl)(nil)
)

// NewPrimaryStore creates a new PostgreSQL primary store implementation.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() {
	s.db.Close()
}

// --- Helper Functions ---

const contentColumns = `id, title, body, status, metadata, word_count, reading_time,
	auto_tags, category, analyzed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanContent scans one row selected with contentColumns.
func scanContent(row rowScanner, dest *models.Content) error {
	return row.Scan(
		&dest.ID,
		&dest.Title,
		&dest.Body,
		&dest.Status,
		&dest.Metadata,
		&dest.WordCount,
		&dest.ReadingTime,
		&dest.AutoTags,
		&dest.Category,
		&dest.AnalyzedAt,
		&dest.CreatedAt,
		&dest.UpdatedAt,
	)
}

// mapPgError translates driver errors into store sentinels, wrapping with what.
func mapPgError(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", what, store.ErrForeignKeyViolation)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}
