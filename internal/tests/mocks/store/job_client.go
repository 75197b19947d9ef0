// Package mock_store holds testify mocks for the store interfaces.
package mock_store

import (
	"context"

	"inkwell/internal/store"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

// JobClient is a mock implementation of store.JobClient.
type JobClient struct {
	mock.Mock
}

var _ store.JobClient = (*JobClient)(nil)

func (m *JobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, relatedEntityType, relatedEntityID)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *JobClient) EnqueueAnalysisJob(ctx context.Context, contentID int64) error {
	args := m.Called(ctx, contentID)
	return args.Error(0)
}

func (m *JobClient) Close() error {
	args := m.Called()
	return args.Error(0)
}
