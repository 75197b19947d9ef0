package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// AsynqJobClient enqueues tasks on Redis and records each enqueue in the JobStore.
var _ JobClient = (*AsynqJobClient)(nil)

type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
	queue    string
}

// NewAsynqJobClient connects to Redis. Analysis jobs go to analysisQueue,
// or "default" when it is empty.
func NewAsynqJobClient(redisOpt asynq.RedisClientOpt, js JobStore, analysisQueue string) (*AsynqJobClient, error) {
	if js == nil {
		return nil, errors.New("JobStore cannot be nil for AsynqJobClient")
	}
	if redisOpt.Addr == "" {
		return nil, errors.New("redis address is required for AsynqJobClient")
	}
	if analysisQueue == "" {
		analysisQueue = "default"
	}
	return &AsynqJobClient{client: asynq.NewClient(redisOpt), jobStore: js, queue: analysisQueue}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and records the event to the JobStore. A failed
// record is logged; the task stays enqueued.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, relatedEntityType string, relatedEntityID int64, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, errors.New("AsynqJobClient internal client is not initialized")
	}

	// Task ids are UUIDs so the job record can key on them.
	jobID := uuid.New()
	opts = append(opts, asynq.TaskID(jobID.String()))

	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.WithField("task_type", task.Type()).Errorf("enqueue failed: %v", err)
		return nil, err
	}
	log.WithFields(log.Fields{"task_type": task.Type(), "task_id": info.ID, "queue": info.Queue}).Debug("task enqueued")

	recordParams := JobRecordParams{
		JobID:             jobID,
		TaskType:          task.Type(),
		Payload:           task.Payload(),
		Queue:             info.Queue,
		Status:            models.JobStatusEnqueued,
		RelatedEntityType: relatedEntityType,
		RelatedEntityID:   relatedEntityID,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, recordParams); err != nil {
		log.Errorf("Failed to record job enqueue event to DB for Task ID %s: %v", info.ID, err)
	}

	return info, nil
}

// EnqueueAnalysisJob schedules a background re-analysis of one content item.
func (jc *AsynqJobClient) EnqueueAnalysisJob(ctx context.Context, contentID int64) error {
	payload, err := json.Marshal(tasks.AnalyzeContentPayload{ContentID: contentID})
	if err != nil {
		return fmt.Errorf("marshal analysis payload for content %d: %w", contentID, err)
	}
	task := asynq.NewTask(tasks.TypeAnalyzeContent, payload)
	_, err = jc.Enqueue(ctx, task, models.RelatedEntityContent, contentID,
		asynq.Queue(jc.queue),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue analysis job for content %d: %w", contentID, err)
	}
	return nil
}
