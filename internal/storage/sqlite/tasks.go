package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"tasktrack/internal/models"
	"tasktrack/internal/ordering"
)

const taskColumns = `id, list_id, title, description, due_date, status, priority, tags, position, created_at, updated_at`

// ListTasks returns the tasks of a list in display order.
func (s *Store) ListTasks(ctx context.Context, listID string) ([]models.Task, error) {
	return listTasks(ctx, s.db, listID)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	return getTask(ctx, s.db, id)
}

// CreateTask appends a task to the end of its list.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Tags == nil {
		t.Tags = []string{}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		siblings, err := listTasks(ctx, tx, t.ListID)
		if err != nil {
			return err
		}
		t.Position = ordering.Append(siblings)

		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ListID, t.Title, nullString(t.Description), nullDate(t.DueDate),
			string(t.Status), string(t.Priority), string(tags), t.Position, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// UpdateTask applies a partial update. Position is never changed here.
func (s *Store) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var updated models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			current.Title = *patch.Title
		}
		if patch.Description != nil {
			current.Description = patch.Description
		}
		if patch.DueDate != nil {
			current.DueDate = patch.DueDate
		}
		if patch.Status != nil {
			current.Status = *patch.Status
		}
		if patch.Priority != nil {
			current.Priority = *patch.Priority
		}
		if patch.Tags != nil {
			current.Tags = *patch.Tags
		}
		current.UpdatedAt = s.now()

		tags, err := json.Marshal(current.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, due_date = ?, status = ?, priority = ?, tags = ?, updated_at = ? WHERE id = ?`,
			current.Title, nullString(current.Description), nullDate(current.DueDate),
			string(current.Status), string(current.Priority), string(tags), current.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task and closes the gap it leaves in its list.
// It returns the id of the list the task belonged to.
func (s *Store) DeleteTask(ctx context.Context, id string) (string, error) {
	var listID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		task, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		listID = task.ListID

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return s.resequence(ctx, tx, listID)
	})
	if err != nil {
		return "", err
	}
	return listID, nil
}

// ResequenceTasks rewrites the positions of a list to 0..n-1.
func (s *Store) ResequenceTasks(ctx context.Context, listID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.resequence(ctx, tx, listID)
	})
}

// ReorderTasks assigns positions following orderedIDs, which must name every
// task of the list exactly once. The reordered list is returned.
func (s *Store) ReorderTasks(ctx context.Context, listID string, orderedIDs []string) ([]models.Task, error) {
	var reordered []models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tasks, err := listTasks(ctx, tx, listID)
		if err != nil {
			return err
		}
		changes, err := ordering.Reorder(tasks, orderedIDs)
		if err != nil {
			return err
		}
		if err := s.applyPositions(ctx, tx, changes); err != nil {
			return err
		}
		reordered, err = listTasks(ctx, tx, listID)
		if err == nil && !ordering.Dense(reordered) {
			s.logger.Warn("positions not dense after reorder", slog.String("list_id", listID))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

func (s *Store) resequence(ctx context.Context, tx *sql.Tx, listID string) error {
	tasks, err := listTasks(ctx, tx, listID)
	if err != nil {
		return err
	}
	changes := ordering.Resequence(tasks)
	if len(changes) == 0 {
		return nil
	}
	s.logger.Debug("resequencing tasks", slog.String("list_id", listID), slog.Int("changed", len(changes)))
	return s.applyPositions(ctx, tx, changes)
}

func (s *Store) applyPositions(ctx context.Context, tx *sql.Tx, changes []ordering.Change) error {
	now := s.now()
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?`, c.Position, now, c.TaskID); err != nil {
			return fmt.Errorf("update position: %w", err)
		}
	}
	return nil
}

func listTasks(ctx context.Context, q querier, listID string) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE list_id = ? ORDER BY position ASC, created_at ASC, id ASC`, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func getTask(ctx context.Context, q querier, id string) (models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %w", models.ErrNotFound)
	}
	return t, err
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		description sql.NullString
		dueDate     sql.NullString
		status      string
		priority    string
		tags        string
	)
	err := row.Scan(&t.ID, &t.ListID, &t.Title, &description, &dueDate, &status, &priority, &tags, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, err
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}

	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		d, err := models.ParseDate(dueDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("decode due date of task %s: %w", t.ID, err)
		}
		t.DueDate = &d
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return models.Task{}, fmt.Errorf("decode tags of task %s: %w", t.ID, err)
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func nullDate(d *models.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
