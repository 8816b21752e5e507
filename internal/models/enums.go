package models

import "strings"

// TaskStatus is the progress state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every valid status in display order.
var TaskStatuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

// ParseTaskStatus rejects anything that is not a known status.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch s := TaskStatus(raw); s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return s, nil
	default:
		return "", NewValidationError("invalid status, valid values: %s", joinValues(TaskStatuses))
	}
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskPriorities lists every valid priority from lowest to highest.
var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// ParseTaskPriority rejects anything that is not a known priority.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	switch p := TaskPriority(raw); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", NewValidationError("invalid priority, valid values: %s", joinValues(TaskPriorities))
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
