package models

import "time"

// User is an account that owns task lists.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskList groups ordered tasks and belongs to exactly one user.
type TaskList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a single entry in a list. Position is zero-based and dense
// within the owning list.
type Task struct {
	ID          string       `json:"id"`
	ListID      string       `json:"list_id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	DueDate     *Date        `json:"due_date"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Tags        []string     `json:"tags"`
	Position    int64        `json:"position"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskPatch carries a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *Date
	Status      *TaskStatus
	Priority    *TaskPriority
	Tags        *[]string
}

// EventTasksChanged is the only event type pushed to list subscribers.
const EventTasksChanged = "tasks_changed"

// ChangeEvent tells subscribers that a list changed and should be re-fetched.
type ChangeEvent struct {
	Type   string `json:"type"`
	ListID string `json:"list_id"`
}

// TasksChanged builds the change notification for a list.
func TasksChanged(listID string) ChangeEvent {
	return ChangeEvent{Type: EventTasksChanged, ListID: listID}
}
