package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tasktrack/internal/models"
)

// ListLists retrieves the lists owned by a user ordered by creation date.
func (s *Store) ListLists(ctx context.Context, ownerID string) ([]models.TaskList, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, owner_id, created_at FROM task_lists WHERE owner_id = ? ORDER BY created_at ASC, id ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	defer rows.Close()

	lists := []models.TaskList{}
	for rows.Next() {
		var l models.TaskList
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// CreateList persists a new list for ownerID.
func (s *Store) CreateList(ctx context.Context, ownerID, name string) (models.TaskList, error) {
	l := models.TaskList{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: s.now(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO task_lists(id, name, owner_id, created_at) VALUES(?, ?, ?, ?)`, l.ID, l.Name, l.OwnerID, l.CreatedAt)
	if err != nil {
		return models.TaskList{}, fmt.Errorf("insert task list: %w", err)
	}
	return l, nil
}

// GetList fetches a single list by id.
func (s *Store) GetList(ctx context.Context, id string) (models.TaskList, error) {
	var l models.TaskList
	err := s.db.QueryRowContext(ctx, `SELECT id, name, owner_id, created_at FROM task_lists WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskList{}, fmt.Errorf("task list %w", models.ErrNotFound)
	}
	if err != nil {
		return models.TaskList{}, fmt.Errorf("get task list: %w", err)
	}
	return l, nil
}

// DeleteList removes a list along with its tasks.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task list %w", models.ErrNotFound)
	}
	return nil
}
