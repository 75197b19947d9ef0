package services

import (
	"context"
	"errors"

	"inkwell/internal/store"

	"github.com/hibiken/asynq"
)

// ErrJobsDisabled is returned when background work is requested but no
// Redis-backed job client is configured.
var ErrJobsDisabled = errors.New("background jobs are disabled")

// NoopJobClient stands in for the Asynq client when redis is not configured.
type NoopJobClient struct{}

var _ store.JobClient = NoopJobClient{}

func (NoopJobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return nil, ErrJobsDisabled
}

func (NoopJobClient) EnqueueAnalysisJob(ctx context.Context, contentID int64) error {
	return ErrJobsDisabled
}

func (NoopJobClient) Close() error { return nil }
