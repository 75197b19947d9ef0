// Package worker holds the Asynq task handlers run by `inkwell worker`.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/internal/store"
	"inkwell/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// Reanalyzer re-runs analysis for one stored content item.
type Reanalyzer interface {
	Reanalyze(ctx context.Context, id int64) (*models.Content, error)
}

// AnalysisDeps holds the collaborators of HandleAnalyzeContentJob.
type AnalysisDeps struct {
	Reanalyzer Reanalyzer
	JobStore   store.JobStore // optional; job status updates are skipped when nil
}

// RegisterHandlers wires every task type onto mux.
func RegisterHandlers(mux *asynq.ServeMux, deps AnalysisDeps) {
	mux.HandleFunc(tasks.TypeAnalyzeContent, HandleAnalyzeContentJob(deps))
}

// HandleAnalyzeContentJob returns the handler for tasks.TypeAnalyzeContent.
// Malformed payloads and deleted content are not retried.
func HandleAnalyzeContentJob(deps AnalysisDeps) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p tasks.AnalyzeContentPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			metrics.ObserveJob(t.Type(), models.JobStatusFailed)
			return fmt.Errorf("unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
		}
		logger := log.WithFields(log.Fields{"task_type": t.Type(), "content_id": p.ContentID})

		jobID, tracked := taskUUID(ctx)
		setStatus := func(status string) {
			if !tracked || deps.JobStore == nil {
				return
			}
			if err := deps.JobStore.UpdateJobStatus(ctx, jobID, status); err != nil {
				logger.Warnf("update job status to %s: %v", status, err)
			}
		}

		setStatus(models.JobStatusRunning)
		content, err := deps.Reanalyzer.Reanalyze(ctx, p.ContentID)
		if err != nil {
			setStatus(models.JobStatusFailed)
			metrics.ObserveJob(t.Type(), models.JobStatusFailed)
			if errors.Is(err, store.ErrNotFound) {
				logger.Warn("content no longer exists, dropping analysis job")
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			logger.Errorf("analysis job failed: %v", err)
			return err
		}

		setStatus(models.JobStatusCompleted)
		metrics.ObserveJob(t.Type(), models.JobStatusCompleted)
		logger.WithField("category", content.Category).Info("analysis job completed")
		return nil
	}
}

// taskUUID reads the Asynq task id, which the job client sets to a UUID.
func taskUUID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := asynq.GetTaskID(ctx)
	if !ok {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
