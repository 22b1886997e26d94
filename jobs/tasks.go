package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/taskhub/taskhub/internal/events"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskNoticeDeliver hands a change notice to the broker.
	TaskNoticeDeliver = "notice:deliver"
)

// NewNoticeTask constructs an Asynq task carrying n.
func NewNoticeTask(n events.Notice) (*asynq.Task, error) {
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal notice: %w", err)
	}
	return asynq.NewTask(TaskNoticeDeliver, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}
