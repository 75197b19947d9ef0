package models

/*
Status constants shared by content records, background jobs and task bookkeeping.
*/

// Content status constants
const (
	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"
	ContentStatusArchived  = "archived"
)

// ValidContentStatus reports whether s is one of the known content statuses.
func ValidContentStatus(s string) bool {
	switch s {
	case ContentStatusDraft, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

// Job status constants
const (
	JobStatusEnqueued  = "enqueued"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusRetrying  = "retrying"
)

// Task type constants, used as related entity labels on job records
const (
	TaskTypeAnalysis       = "analysis"
	TaskTypeCategorization = "categorization"
)

// RelatedEntityContent labels job records that point at a content row.
const RelatedEntityContent = "content"
