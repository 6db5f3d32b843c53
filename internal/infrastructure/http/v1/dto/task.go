package dto

import (
	"stockward/internal/core/apperror"
	"stockward/internal/domain/task"
)

// ListTasksQuery filters tasks by assignee and state.
type ListTasksQuery struct {
	AssigneeID string `form:"assigneeId"`
	State      string `form:"state"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// StateFilter parses the optional state parameter.
func (q ListTasksQuery) StateFilter() (*task.State, error) {
	if q.State == "" {
		return nil, nil
	}
	switch task.State(q.State) {
	case task.StatePending, task.StateCompleted:
		s := task.State(q.State)
		return &s, nil
	default:
		return nil, apperror.NewValidation("unknown task state").WithDetail("state", q.State)
	}
}
