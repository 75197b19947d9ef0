package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// --- Job Store Implementation ---

// RecordJobEnqueue inserts a record into the background_jobs table. Recording
// the same job twice is not an error.
func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (job_id) DO NOTHING
		RETURNING id`

	payload := json.RawMessage("{}")
	if len(params.Payload) > 0 {
		payload = json.RawMessage(params.Payload)
	}
	var relatedType *string
	if params.RelatedEntityType != "" {
		relatedType = &params.RelatedEntityType
	}
	var relatedID *int64
	if params.RelatedEntityID != 0 {
		relatedID = &params.RelatedEntityID
	}

	var insertedID int64
	err := s.db.QueryRow(ctx, query,
		params.JobID, params.TaskType, payload, params.Queue, params.Status,
		relatedType, relatedID, time.Now(),
	).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.WithField("job_id", params.JobID).Debug("job already recorded")
			return nil
		}
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}

	log.WithFields(log.Fields{"job_id": params.JobID, "row_id": insertedID}).Debug("recorded job enqueue")
	return nil
}

// UpdateJobStatus updates the status of a job given its task UUID.
func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	query := `UPDATE background_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	cmdTag, err := s.db.Exec(ctx, query, status, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to update status: %w", jobID, store.ErrNotFound)
	}
	return nil
}

// ListJobs returns recorded jobs, newest first.
func (s *StoreImpl) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT id, job_id, task_type, payload, queue, status, related_entity_type, related_entity_id, created_at, updated_at
		FROM background_jobs
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.BackgroundJob{}
	for rows.Next() {
		job := &models.BackgroundJob{}
		err := rows.Scan(
			&job.ID, &job.JobID, &job.TaskType, &job.Payload, &job.Queue, &job.Status,
			&job.RelatedEntityType, &job.RelatedEntityID, &job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}
