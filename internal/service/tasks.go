package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tasktrack/internal/models"
)

// CreateTaskInput holds the raw fields of a new task.
type CreateTaskInput struct {
	Title       string
	Description *string
	DueDate     *string
	Status      *string
	Priority    *string
	Tags        []string
}

// UpdateTaskInput holds a partial task update. Nil fields are unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *string
	Status      *string
	Priority    *string
	Tags        *[]string
}

// TaskService scopes list and task operations to their owner.
type TaskService struct {
	store    TaskStore
	notifier Notifier
	logger   *slog.Logger
}

// NewTaskService wires the store and the change notifier.
func NewTaskService(store TaskStore, notifier Notifier, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TaskService{store: store, notifier: notifier, logger: logger}
}

// ListLists returns the caller's lists.
func (s *TaskService) ListLists(ctx context.Context, owner models.User) ([]models.TaskList, error) {
	return s.store.ListLists(ctx, owner.ID)
}

// CreateList creates a list owned by the caller.
func (s *TaskService) CreateList(ctx context.Context, owner models.User, name string) (models.TaskList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TaskList{}, models.NewValidationError("list name must not be empty")
	}
	return s.store.CreateList(ctx, owner.ID, name)
}

// DeleteList removes one of the caller's lists with all its tasks.
func (s *TaskService) DeleteList(ctx context.Context, owner models.User, listID string) error {
	if _, err := s.AuthorizeList(ctx, owner, listID); err != nil {
		return err
	}
	if err := s.store.DeleteList(ctx, listID); err != nil {
		return err
	}
	s.broadcast(listID)
	return nil
}

// AuthorizeList returns the list when it exists and belongs to owner.
// Lists of other users are reported as missing.
func (s *TaskService) AuthorizeList(ctx context.Context, owner models.User, listID string) (models.TaskList, error) {
	list, err := s.store.GetList(ctx, listID)
	if err != nil {
		return models.TaskList{}, err
	}
	if list.OwnerID != owner.ID {
		return models.TaskList{}, fmt.Errorf("task list %w", models.ErrNotFound)
	}
	return list, nil
}

// ListTasks returns the tasks of one of the caller's lists in position order.
func (s *TaskService) ListTasks(ctx context.Context, owner models.User, listID string) ([]models.Task, error) {
	if _, err := s.AuthorizeList(ctx, owner, listID); err != nil {
		return nil, err
	}
	return s.store.ListTasks(ctx, listID)
}

// CreateTask appends a task to one of the caller's lists.
func (s *TaskService) CreateTask(ctx context.Context, owner models.User, listID string, in CreateTaskInput) (models.Task, error) {
	if _, err := s.AuthorizeList(ctx, owner, listID); err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		ListID:      listID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      models.StatusPending,
		Priority:    models.PriorityMedium,
		Tags:        models.NormalizeTags(in.Tags),
	}
	if task.Title == "" {
		return models.Task{}, models.NewValidationError("title is required")
	}
	if in.Status != nil {
		status, err := models.ParseTaskStatus(*in.Status)
		if err != nil {
			return models.Task{}, err
		}
		task.Status = status
	}
	if in.Priority != nil {
		priority, err := models.ParseTaskPriority(*in.Priority)
		if err != nil {
			return models.Task{}, err
		}
		task.Priority = priority
	}
	if in.DueDate != nil {
		due, err := models.ParseDate(*in.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		task.DueDate = &due
	}

	created, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	s.broadcast(listID)
	return created, nil
}

// UpdateTask changes the provided fields of one of the caller's tasks.
func (s *TaskService) UpdateTask(ctx context.Context, owner models.User, taskID string, in UpdateTaskInput) (models.Task, error) {
	task, err := s.authorizeTask(ctx, owner, taskID)
	if err != nil {
		return models.Task{}, err
	}

	var patch models.TaskPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return models.Task{}, models.NewValidationError("title must not be empty")
		}
		patch.Title = &title
	}
	patch.Description = in.Description
	if in.DueDate != nil {
		due, err := models.ParseDate(*in.DueDate)
		if err != nil {
			return models.Task{}, err
		}
		patch.DueDate = &due
	}
	if in.Status != nil {
		status, err := models.ParseTaskStatus(*in.Status)
		if err != nil {
			return models.Task{}, err
		}
		patch.Status = &status
	}
	if in.Priority != nil {
		priority, err := models.ParseTaskPriority(*in.Priority)
		if err != nil {
			return models.Task{}, err
		}
		patch.Priority = &priority
	}
	if in.Tags != nil {
		tags := models.NormalizeTags(*in.Tags)
		patch.Tags = &tags
	}

	updated, err := s.store.UpdateTask(ctx, taskID, patch)
	if err != nil {
		return models.Task{}, err
	}
	s.broadcast(task.ListID)
	return updated, nil
}

// DeleteTask removes one of the caller's tasks; the remaining tasks of the
// list are resequenced.
func (s *TaskService) DeleteTask(ctx context.Context, owner models.User, taskID string) error {
	if _, err := s.authorizeTask(ctx, owner, taskID); err != nil {
		return err
	}
	listID, err := s.store.DeleteTask(ctx, taskID)
	if err != nil {
		return err
	}
	s.broadcast(listID)
	return nil
}

// ReorderTasks sets the order of all tasks in one of the caller's lists.
func (s *TaskService) ReorderTasks(ctx context.Context, owner models.User, listID string, orderedIDs []string) ([]models.Task, error) {
	if _, err := s.AuthorizeList(ctx, owner, listID); err != nil {
		return nil, err
	}
	if len(orderedIDs) == 0 {
		return nil, models.NewValidationError("task order cannot be empty")
	}
	tasks, err := s.store.ReorderTasks(ctx, listID, orderedIDs)
	if err != nil {
		return nil, err
	}
	s.broadcast(listID)
	return tasks, nil
}

func (s *TaskService) authorizeTask(ctx context.Context, owner models.User, taskID string) (models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	list, err := s.store.GetList(ctx, task.ListID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return models.Task{}, err
	}
	if err != nil || list.OwnerID != owner.ID {
		return models.Task{}, fmt.Errorf("task %w", models.ErrNotFound)
	}
	return task, nil
}

func (s *TaskService) broadcast(listID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(listID, models.TasksChanged(listID))
}
