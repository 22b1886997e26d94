package comments

import "time"

// Comment is a note left on a task.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	ProjectID int64     `json:"projectId"`
	AuthorID  int64     `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskRef is the part of a task that decides who may see its comments. AssigneeID is 0
// for unassigned tasks.
type TaskRef struct {
	ID         int64
	ProjectID  int64
	AssigneeID int64
}

// CommentRequest is the payload for creating or editing a comment.
type CommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=10000"`
}
