package store

import (
	"context"
	"time"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// --- Job Client ---

type JobClient interface {
	// Enqueue records the related entity alongside the job for bookkeeping.
	Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueAnalysisJob(ctx context.Context, contentID int64) error
	Close() error
}

// --- Content Store ---

// ContentListOptions filters and pages ListContent. Zero values mean "no filter".
type ContentListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
	Tags      []string
	Category  string
	Status    string
}

// AnalysisUpdate carries the analysis fields written back onto a content row.
type AnalysisUpdate struct {
	WordCount   int
	ReadingTime int
	AutoTags    []string
	Category    string
	AnalyzedAt  time.Time
}

type ContentStore interface {
	CreateContent(ctx context.Context, content *models.Content) error
	GetContent(ctx context.Context, id int64) (*models.Content, error)
	GetContentsByIDs(ctx context.Context, ids []int64) ([]*models.Content, error)
	UpdateContent(ctx context.Context, content *models.Content) error
	UpdateContentAnalysis(ctx context.Context, id int64, update AnalysisUpdate) error
	UpdateContentCategory(ctx context.Context, id int64, category string) error
	DeleteContent(ctx context.Context, id int64) error
	ListContent(ctx context.Context, opts ContentListOptions) ([]*models.Content, error)

	Ping(ctx context.Context) error
}

// --- Tag Store ---

type TagStore interface {
	GetOrCreateTagsByName(ctx context.Context, names []string) ([]*models.Tag, error)
	ListTags(ctx context.Context, limit, offset int) ([]*models.Tag, error)
	AddTagsToContent(ctx context.Context, contentID int64, tagIDs []int64) error
	RemoveTagFromContent(ctx context.Context, contentID, tagID int64) error
	GetContentTags(ctx context.Context, contentID int64) ([]*models.Tag, error)
	GetTagsForContents(ctx context.Context, contentIDs []int64) (map[int64][]*models.Tag, error)
}

// --- Category Store ---

// CategoryStore persists the taxonomy. ListAll returns categories ordered by
// position, then id, which is the order classification relies on.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListAll(ctx context.Context) ([]models.Category, error)
	UpdateCategoryKeywords(ctx context.Context, id int64, keywords []string) error
	DeleteCategory(ctx context.Context, id int64) error
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID             uuid.UUID
	TaskType          string
	Payload           []byte
	Queue             string
	Status            string
	RelatedEntityType string // Optional: e.g., "content"
	RelatedEntityID   int64  // Optional: e.g., content.ID
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
	ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error)
}
