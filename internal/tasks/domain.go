package tasks

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Priority orders tasks within a project.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	AssigneeID  *int64     `json:"assigneeId,omitempty"`
	ReporterID  int64      `json:"reporterId"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// OwnerID is the user an ":own" permission refers to: the assignee, or 0 when unassigned.
func (t *Task) OwnerID() int64 {
	if t.AssigneeID == nil {
		return 0
	}
	return *t.AssigneeID
}

// ListFilter narrows a project's task listing.
type ListFilter struct {
	ProjectID  int64
	AssigneeID *int64
	Status     Status
}

// CreateTaskRequest is the payload for POST /api/projects/{id}/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=10000"`
	Priority    Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID  *int64     `json:"assigneeId" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest patches a task. Nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=10000"`
	Status      *Status    `json:"status" validate:"omitempty,oneof=todo in_progress review done"`
	Priority    *Priority  `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssigneeID  *int64     `json:"assigneeId" validate:"omitempty,gt=0"`
	DueDate     *time.Time `json:"dueDate"`
}

// restrictedToOwn reports whether the patch only touches fields an assignee may edit.
func (r UpdateTaskRequest) restrictedToOwn() bool {
	return r.AssigneeID == nil && r.Title == nil
}
