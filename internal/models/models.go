package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Content is a stored post together with the fields written back by the analysis engine.
type Content struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Body        string          `db:"body" json:"body"`
	Status      string          `db:"status" json:"status"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	WordCount   int             `db:"word_count" json:"word_count"`
	ReadingTime int             `db:"reading_time" json:"reading_time"`
	AutoTags    []string        `db:"auto_tags" json:"auto_tags"`
	Category    string          `db:"category" json:"category"`
	AnalyzedAt  *time.Time      `db:"analyzed_at" json:"analyzed_at,omitempty"` // nil until the first analysis ran
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type Tag struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Category is one taxonomy entry. Keywords are stored lowercase.
type Category struct {
	ID        int64     `db:"id" json:"id" yaml:"-"`
	Name      string    `db:"name" json:"name" yaml:"name"`
	Slug      string    `db:"slug" json:"slug" yaml:"slug,omitempty"`
	Keywords  []string  `db:"keywords" json:"keywords" yaml:"keywords"`
	Position  int       `db:"position" json:"position" yaml:"position,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"-"`
}

// BackgroundJob mirrors the background_jobs table schema.
type BackgroundJob struct {
	ID                int64           `db:"id" json:"id"`
	JobID             uuid.UUID       `db:"job_id" json:"job_id"` // Asynq Task ID
	TaskType          string          `db:"task_type" json:"task_type"`
	Payload           json.RawMessage `db:"payload" json:"payload"`
	Queue             string          `db:"queue" json:"queue"`
	Status            string          `db:"status" json:"status"`
	RelatedEntityType *string         `db:"related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   *int64          `db:"related_entity_id" json:"related_entity_id,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}
