package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/taskhub/taskhub/internal/events"
	jobmetrics "github.com/taskhub/taskhub/internal/jobs"
)

// Enqueuer is the subset of Client used to queue notices.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NoticeQueue is an events.Publisher that defers delivery to the worker.
type NoticeQueue struct {
	client Enqueuer
}

// NewNoticeQueue wraps an enqueuer.
func NewNoticeQueue(client Enqueuer) *NoticeQueue {
	return &NoticeQueue{client: client}
}

// Publish implements events.Publisher.
func (q *NoticeQueue) Publish(ctx context.Context, n events.Notice) error {
	task, err := NewNoticeTask(n)
	if err != nil {
		return err
	}
	if _, err := q.client.Enqueue(ctx, task, asynq.TaskID(n.ID)); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("jobs: enqueue notice: %w", err)
	}
	return nil
}

// NoticeDeliveryJob delivers queued notices to the broker.
type NoticeDeliveryJob struct {
	Publisher events.Publisher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewNoticeDeliveryJob constructs the job handler.
func NewNoticeDeliveryJob(publisher events.Publisher, logger *slog.Logger, metrics *jobmetrics.Metrics) *NoticeDeliveryJob {
	return &NoticeDeliveryJob{Publisher: publisher, Logger: logger, Metrics: metrics}
}

// Handle executes one delivery. Malformed payloads are not retried.
func (j *NoticeDeliveryJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Publisher == nil {
		return errors.New("notice delivery: publisher not configured")
	}
	var n events.Notice
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		j.log().Error("decode notice", slog.Any("error", err))
		return fmt.Errorf("notice delivery: %v: %w", err, asynq.SkipRetry)
	}
	if n.Type == "" || n.ProjectID <= 0 {
		j.log().Error("invalid notice", slog.String("id", n.ID))
		return fmt.Errorf("notice delivery: invalid notice %q: %w", n.ID, asynq.SkipRetry)
	}

	tracker := j.Metrics.Track(TaskNoticeDeliver)
	err := j.Publisher.Publish(ctx, n)
	if err != nil {
		j.log().Warn("deliver notice", slog.String("id", n.ID), slog.String("type", n.Type), slog.Any("error", err))
	}
	return tracker.End(err)
}

// TaskHandler adapts the job for worker registration.
func (j *NoticeDeliveryJob) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskNoticeDeliver, Handler: j.Handle}
}

func (j *NoticeDeliveryJob) log() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
