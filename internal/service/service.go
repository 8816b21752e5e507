// Package service enforces ownership and validation around the store and
// signals list subscribers after every successful mutation.
package service

import (
	"context"

	"tasktrack/internal/models"
)

// UserStore is the record store for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, email string, fullName *string, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// TaskStore is the record store for lists and tasks. Every ordering
// operation must commit atomically.
type TaskStore interface {
	ListLists(ctx context.Context, ownerID string) ([]models.TaskList, error)
	CreateList(ctx context.Context, ownerID, name string) (models.TaskList, error)
	GetList(ctx context.Context, id string) (models.TaskList, error)
	DeleteList(ctx context.Context, id string) error

	ListTasks(ctx context.Context, listID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id string) (string, error)
	ReorderTasks(ctx context.Context, listID string, orderedIDs []string) ([]models.Task, error)
}

// Notifier delivers change events to the viewers of a list.
type Notifier interface {
	Broadcast(listID string, event models.ChangeEvent)
}

// TokenIssuer is the credential collaborator.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Verify(token string) (string, error)
}
