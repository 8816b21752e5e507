package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tasktrack/internal/auth"
	"tasktrack/internal/models"
	"tasktrack/internal/storage/sqlite"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (n *recordingNotifier) Broadcast(listID string, event models.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fixture struct {
	store    *sqlite.Store
	notifier *recordingNotifier
	auth     *AuthService
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		notifier: notifier,
		auth:     NewAuthService(store, tokens, nil),
		tasks:    NewTaskService(store, notifier, nil),
	}
}

func (f *fixture) user(t *testing.T, email string) models.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), email, "secret-password", nil)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func strPtr(s string) *string { return &s }

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.auth.Register(ctx, "  Alice@Example.com ", "strong-password", strPtr("Alice Doe"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}

	resolved, err := f.auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("token resolved to %s, want %s", resolved.ID, user.ID)
	}

	if _, _, err := f.auth.Register(ctx, "alice@example.com", "x", nil); !errorAs[*models.ConflictError](err) {
		t.Errorf("expected conflict, got %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "alice@example.com", "strong-password"); err != nil {
		t.Errorf("login: %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "nobody@example.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Authenticate(ctx, ""); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("expected not authenticated, got %v", err)
	}
	if _, err := f.auth.Authenticate(ctx, "garbage"); !errors.Is(err, models.ErrAuthentication) {
		t.Errorf("expected invalid token, got %v", err)
	}

	tokens, _ := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	orphan, _ := tokens.Issue("no-such-user")
	if _, err := f.auth.Authenticate(ctx, orphan); !errors.Is(err, models.ErrAuthentication) {
		t.Errorf("expected invalid token for unknown subject, got %v", err)
	}
}

func TestCreateTaskDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	list, err := f.tasks.CreateList(ctx, owner, "Math Homework")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	task, err := f.tasks.CreateTask(ctx, owner, list.ID, CreateTaskInput{
		Title: "Finish worksheet",
		Tags:  []string{" algebra ", "", "   ", "urgent", "algebra"},
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != models.StatusPending || task.Priority != models.PriorityMedium {
		t.Errorf("unexpected defaults %s/%s", task.Status, task.Priority)
	}
	if fmt.Sprint(task.Tags) != "[algebra urgent algebra]" {
		t.Errorf("unexpected tags %q", task.Tags)
	}
	if f.notifier.count() != 1 {
		t.Errorf("expected one broadcast, got %d", f.notifier.count())
	}

	invalid := []CreateTaskInput{
		{Title: "x", Status: strPtr("done")},
		{Title: "x", Priority: strPtr("urgent")},
		{Title: "x", DueDate: strPtr("tomorrow")},
		{Title: "   "},
	}
	for _, in := range invalid {
		if _, err := f.tasks.CreateTask(ctx, owner, list.ID, in); !errorAs[*models.ValidationError](err) {
			t.Errorf("input %+v: expected validation error, got %v", in, err)
		}
	}
	if f.notifier.count() != 1 {
		t.Errorf("failed creates must not broadcast, got %d", f.notifier.count())
	}
}

func TestOwnershipIsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	intruder := f.user(t, "intruder@example.com")

	list, _ := f.tasks.CreateList(ctx, owner, "Private")
	task, _ := f.tasks.CreateTask(ctx, owner, list.ID, CreateTaskInput{Title: "secret"})
	before := f.notifier.count()

	checks := map[string]error{}
	_, checks["list tasks"] = f.tasks.ListTasks(ctx, intruder, list.ID)
	_, checks["create task"] = f.tasks.CreateTask(ctx, intruder, list.ID, CreateTaskInput{Title: "x"})
	_, checks["update task"] = f.tasks.UpdateTask(ctx, intruder, task.ID, UpdateTaskInput{Title: strPtr("y")})
	checks["delete task"] = f.tasks.DeleteTask(ctx, intruder, task.ID)
	_, checks["reorder"] = f.tasks.ReorderTasks(ctx, intruder, list.ID, []string{task.ID})
	checks["delete list"] = f.tasks.DeleteList(ctx, intruder, list.ID)

	_, missingErr := f.tasks.ListTasks(ctx, owner, "does-not-exist")
	for name, err := range checks {
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("%s: expected not found, got %v", name, err)
		}
	}
	if _, err := f.tasks.ListTasks(ctx, intruder, list.ID); err.Error() != missingErr.Error() {
		t.Errorf("foreign list error %q differs from missing list error %q", err, missingErr)
	}
	if f.notifier.count() != before {
		t.Errorf("rejected mutations broadcast %d events", f.notifier.count()-before)
	}

	stored, _ := f.tasks.ListTasks(ctx, owner, list.ID)
	if len(stored) != 1 || stored[0].Title != "secret" {
		t.Errorf("intruder changed state: %+v", stored)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	list, _ := f.tasks.CreateList(ctx, owner, "List")
	task, _ := f.tasks.CreateTask(ctx, owner, list.ID, CreateTaskInput{
		Title:       "Finish worksheet",
		Description: strPtr("Complete problems 1-10"),
		Priority:    strPtr("high"),
	})

	updated, err := f.tasks.UpdateTask(ctx, owner, task.ID, UpdateTaskInput{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusCompleted || updated.Priority != models.PriorityHigh {
		t.Errorf("unexpected task %+v", updated)
	}
	if updated.Description == nil || *updated.Description != "Complete problems 1-10" {
		t.Errorf("description should be untouched, got %v", updated.Description)
	}

	if _, err := f.tasks.UpdateTask(ctx, owner, task.ID, UpdateTaskInput{Status: strPtr("archived")}); !errorAs[*models.ValidationError](err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.tasks.UpdateTask(ctx, owner, "missing", UpdateTaskInput{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteAndReorderKeepDenseOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	list, _ := f.tasks.CreateList(ctx, owner, "List")

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		task, err := f.tasks.CreateTask(ctx, owner, list.ID, CreateTaskInput{Title: title})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, task.ID)
	}

	if err := f.tasks.DeleteTask(ctx, owner, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	tasks, _ := f.tasks.ListTasks(ctx, owner, list.ID)
	if len(tasks) != 2 || tasks[0].ID != ids[0] || tasks[0].Position != 0 || tasks[1].ID != ids[2] || tasks[1].Position != 1 {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}

	if _, err := f.tasks.ReorderTasks(ctx, owner, list.ID, nil); !errorAs[*models.ValidationError](err) {
		t.Errorf("expected validation error for empty order, got %v", err)
	}
	if _, err := f.tasks.ReorderTasks(ctx, owner, list.ID, []string{ids[2], ids[2]}); !errorAs[*models.ValidationError](err) {
		t.Errorf("expected validation error for duplicate ids, got %v", err)
	}

	reordered, err := f.tasks.ReorderTasks(ctx, owner, list.ID, []string{ids[2], ids[0]})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if reordered[0].ID != ids[2] || reordered[1].ID != ids[0] {
		t.Errorf("unexpected order %+v", reordered)
	}
	// three creates, one delete, one reorder
	if got := f.notifier.count(); got != 5 {
		t.Errorf("expected 5 broadcasts, got %d", got)
	}
}

func TestDeleteListCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner@example.com")
	list, _ := f.tasks.CreateList(ctx, owner, "List")
	task, _ := f.tasks.CreateTask(ctx, owner, list.ID, CreateTaskInput{Title: "A"})

	if err := f.tasks.DeleteList(ctx, owner, list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	if _, err := f.store.GetTask(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected task to be deleted with its list, got %v", err)
	}
	lists, _ := f.tasks.ListLists(ctx, owner)
	if len(lists) != 0 {
		t.Errorf("expected no lists, got %d", len(lists))
	}
}

func errorAs[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
