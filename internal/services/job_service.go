package services

import (
	"context"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// JobService lists the background jobs recorded at enqueue time.
type JobService struct {
	jobStore store.JobStore
}

// NewJobService creates a new JobService.
func NewJobService(js store.JobStore) *JobService {
	return &JobService{
		jobStore: js,
	}
}

// ListJobs returns recorded jobs, newest first.
func (s *JobService) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	jobs, err := s.jobStore.ListJobs(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs from store: %w", err)
	}
	return jobs, nil
}
