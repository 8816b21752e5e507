package ordering

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"tasktrack/internal/models"
)

func makeTasks(n int) []models.Task {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := make([]models.Task, n)
	for i := range tasks {
		tasks[i] = models.Task{
			ID:        fmt.Sprintf("t%d", i),
			Position:  int64(i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
	}
	return tasks
}

func apply(tasks []models.Task, changes []Change) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		index[t.ID] = i
	}
	for _, c := range changes {
		tasks[index[c.TaskID]].Position = c.Position
	}
}

func TestAppend(t *testing.T) {
	if got := Append(nil); got != 0 {
		t.Errorf("expected 0 for empty list, got %d", got)
	}
	if got := Append(makeTasks(3)); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestResequenceClosesGap(t *testing.T) {
	tasks := makeTasks(3)
	// drop the middle task
	remaining := []models.Task{tasks[0], tasks[2]}

	changes := Resequence(remaining)
	if len(changes) != 1 {
		t.Fatalf("expected one change, got %v", changes)
	}
	if changes[0].TaskID != "t2" || changes[0].Position != 1 {
		t.Errorf("unexpected change %+v", changes[0])
	}

	apply(remaining, changes)
	if !Dense(remaining) {
		t.Errorf("positions not dense: %+v", remaining)
	}
	if again := Resequence(remaining); len(again) != 0 {
		t.Errorf("second resequence should be a no-op, got %v", again)
	}
}

func TestResequenceBreaksTiesByCreation(t *testing.T) {
	tasks := makeTasks(2)
	tasks[0].Position = 5
	tasks[1].Position = 5
	tasks[0].CreatedAt, tasks[1].CreatedAt = tasks[1].CreatedAt, tasks[0].CreatedAt

	apply(tasks, Resequence(tasks))
	if tasks[1].Position != 0 || tasks[0].Position != 1 {
		t.Errorf("older task should come first: %+v", tasks)
	}
}

func TestReorder(t *testing.T) {
	tasks := makeTasks(3)

	changes, err := Reorder(tasks, []string{"t2", "t1", "t0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	apply(tasks, changes)
	want := map[string]int64{"t2": 0, "t1": 1, "t0": 2}
	for _, task := range tasks {
		if task.Position != want[task.ID] {
			t.Errorf("task %s: expected position %d, got %d", task.ID, want[task.ID], task.Position)
		}
	}
}

func TestReorderRejectsMismatch(t *testing.T) {
	cases := map[string][]string{
		"empty":     {},
		"missing":   {"t0", "t1"},
		"extra":     {"t0", "t1", "t2", "t3"},
		"unknown":   {"t0", "t1", "zz"},
		"duplicate": {"t0", "t1", "t1"},
	}

	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			tasks := makeTasks(3)
			changes, err := Reorder(tasks, ids)
			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if changes != nil {
				t.Errorf("expected no changes, got %v", changes)
			}
		})
	}
}

func TestDenseAfterRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var tasks []models.Task
	next := 0

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(tasks) == 0:
			tasks = append(tasks, models.Task{
				ID:        fmt.Sprintf("n%d", next),
				Position:  Append(tasks),
				CreatedAt: time.Unix(int64(next), 0),
			})
			next++
		case op == 1:
			i := rng.Intn(len(tasks))
			tasks = append(tasks[:i], tasks[i+1:]...)
			apply(tasks, Resequence(tasks))
		default:
			ids := make([]string, len(tasks))
			for i, p := range rng.Perm(len(tasks)) {
				ids[i] = tasks[p].ID
			}
			changes, err := Reorder(tasks, ids)
			if err != nil {
				t.Fatalf("step %d: %v", step, err)
			}
			apply(tasks, changes)
		}

		if !Dense(tasks) {
			t.Fatalf("step %d: positions not dense: %+v", step, tasks)
		}
	}
}

func TestDense(t *testing.T) {
	if !Dense(nil) {
		t.Error("empty list is dense")
	}
	tasks := makeTasks(3)
	tasks[2].Position = 3
	if Dense(tasks) {
		t.Error("gap should not be dense")
	}
	tasks[2].Position = 1
	if Dense(tasks) {
		t.Error("duplicate should not be dense")
	}
}
