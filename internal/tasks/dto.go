package tasks

import "strings"

// CreateTaskRequest is the body of POST /tasks. It has no owner field: the
// owner always comes from the authenticated request.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Status      Status  `json:"status" validate:"omitempty,oneof=pending in_progress done"`
}

// UpdateTaskRequest lists the only fields a client may change. Nil means
// unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *Status `json:"status" validate:"omitempty,oneof=pending in_progress done"`
}

func (r *CreateTaskRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Status == "" {
		r.Status = StatusPending
	}
}

func (r *UpdateTaskRequest) normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
}

func (r UpdateTaskRequest) apply(task *Task) {
	if r.Title != nil {
		task.Title = *r.Title
	}
	if r.Description != nil {
		desc := *r.Description
		task.Description = &desc
	}
	if r.Status != nil {
		task.Status = *r.Status
	}
}
