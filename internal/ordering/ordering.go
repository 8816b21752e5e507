// Package ordering keeps task positions within a list dense and zero-based.
//
// The functions here are pure: they inspect the tasks of a single list and
// report which positions must change. Callers persist the changes inside one
// transaction so that concurrent mutations never observe a gap.
package ordering

import (
	"sort"

	"tasktrack/internal/models"
)

// Change assigns a new position to a task.
type Change struct {
	TaskID   string
	Position int64
}

var (
	errEmptyOrder = models.NewValidationError("task order cannot be empty")
	errMismatch   = models.NewValidationError("provided task IDs do not match tasks in list")
)

// Append returns the slot for a task added to the end of the list.
func Append(tasks []models.Task) int64 {
	return int64(len(tasks))
}

// Sort orders tasks by position, then creation time, then id.
func Sort(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Resequence closes gaps left by removals. Only tasks whose position differs
// from their rank are returned, so a second call yields nothing.
func Resequence(tasks []models.Task) []Change {
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	Sort(sorted)

	var changes []Change
	for i, t := range sorted {
		if t.Position != int64(i) {
			changes = append(changes, Change{TaskID: t.ID, Position: int64(i)})
		}
	}
	return changes
}

// Reorder validates that orderedIDs is a permutation of the list's task ids
// and returns a change for every task. Nothing is returned on error.
func Reorder(tasks []models.Task, orderedIDs []string) ([]Change, error) {
	if len(orderedIDs) == 0 {
		return nil, errEmptyOrder
	}
	if len(orderedIDs) != len(tasks) {
		return nil, errMismatch
	}

	existing := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		existing[t.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(orderedIDs))
	changes := make([]Change, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		if _, ok := existing[id]; !ok {
			return nil, errMismatch
		}
		if _, dup := seen[id]; dup {
			return nil, errMismatch
		}
		seen[id] = struct{}{}
		changes = append(changes, Change{TaskID: id, Position: int64(i)})
	}
	return changes, nil
}

// Dense reports whether the positions are exactly 0..n-1.
func Dense(tasks []models.Task) bool {
	seen := make([]bool, len(tasks))
	for _, t := range tasks {
		if t.Position < 0 || t.Position >= int64(len(tasks)) || seen[t.Position] {
			return false
		}
		seen[t.Position] = true
	}
	return true
}
