// Package events carries change notices for projects, tasks and comments to
// subscribed clients.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notice types.
const (
	TaskCreated    = "task.created"
	TaskUpdated    = "task.updated"
	TaskDeleted    = "task.deleted"
	CommentCreated = "comment.created"
	CommentUpdated = "comment.updated"
	CommentDeleted = "comment.deleted"
)

// Notice describes a change that happened inside a project.
type Notice struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProjectID int64     `json:"projectId"`
	TaskID    int64     `json:"taskId,omitempty"`
	CommentID int64     `json:"commentId,omitempty"`
	ActorID   int64     `json:"actorId"`
	At        time.Time `json:"at"`
}

// NewNotice stamps a notice with a fresh ID and the current time.
func NewNotice(typ string, projectID, actorID int64) Notice {
	return Notice{
		ID:        uuid.NewString(),
		Type:      typ,
		ProjectID: projectID,
		ActorID:   actorID,
		At:        time.Now().UTC(),
	}
}

// Publisher delivers notices. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, n Notice) error
}

// Nop discards notices.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Notice) error { return nil }
