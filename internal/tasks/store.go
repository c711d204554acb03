package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/models"
	"taskboard/internal/notify"
)

// Identity provides the user currently signed in, if any.
type Identity interface {
	Current() (models.User, bool)
}

// MutationObserver is told about every completed mutation.
type MutationObserver interface {
	ObserveMutation(op string)
	SetTasks(n int)
}

// Stats summarizes the collection by status.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// Store owns the canonical in-memory task collection. Newest tasks come first.
// Mutations are serialized; readers always see the result of the last
// completed mutation.
type Store struct {
	mu       sync.RWMutex
	tasks    []models.Task
	identity Identity
	notifier notify.Notifier
	observer MutationObserver
	logger   *slog.Logger
	latency  time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets where mutation results are reported.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithObserver attaches a metrics observer.
func WithObserver(o MutationObserver) Option {
	return func(s *Store) { s.observer = o }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithLatency delays every mutation by d before it is applied.
func WithLatency(d time.Duration) Option {
	return func(s *Store) { s.latency = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSeed preloads the collection.
func WithSeed(list []models.Task) Option {
	return func(s *Store) {
		s.tasks = make([]models.Task, 0, len(list))
		for _, t := range list {
			s.tasks = append(s.tasks, t.Clone())
		}
	}
}

// NewStore constructs an empty store reading task owners from identity.
func NewStore(identity Identity, opts ...Option) *Store {
	s := &Store{
		tasks:    []models.Task{},
		identity: identity,
		notifier: notify.Nop{},
		logger:   slog.Default(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer != nil {
		s.observer.SetTasks(len(s.tasks))
	}
	return s
}

// List returns a copy of the collection in store order.
func (s *Store) List() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Get looks a task up by id.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return models.Task{}, false
}

// Create adds a new pending task at the front of the collection. The id,
// timestamps and owner are assigned here and never taken from the caller.
func (s *Store) Create(ctx context.Context, form models.TaskFormData) models.Task {
	s.wait(ctx)
	form = form.Normalize()

	var owner string
	if s.identity != nil {
		if u, ok := s.identity.Current(); ok {
			owner = u.Email
		}
	}

	now := s.now()
	task := models.Task{
		ID:          s.newID(),
		Title:       form.Title,
		Description: form.Description,
		Priority:    form.Priority,
		Status:      models.StatusPending,
		DueDate:     form.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
		AssignedTo:  owner,
		SharedWith:  form.SharedWith,
		Tags:        form.Tags,
	}

	s.mu.Lock()
	s.tasks = append([]models.Task{task}, s.tasks...)
	s.mu.Unlock()

	s.done("create", "Task created successfully!", slog.String("id", task.ID))
	return task.Clone()
}

// Update merges patch into the task with the given id. A missing id is not
// an error: nothing changes and found is false.
func (s *Store) Update(ctx context.Context, id string, patch models.TaskPatch) (task models.Task, found bool) {
	s.wait(ctx)
	task, found = s.mutate(id, func(t models.Task) models.Task {
		return patch.Apply(t, s.now())
	})
	s.done("update", "Task updated successfully!", slog.String("id", id), slog.Bool("found", found))
	return task, found
}

// Delete removes the task with the given id; a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.wait(ctx)

	s.mu.Lock()
	i := s.indexOf(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()

	s.done("delete", "Task deleted successfully!", slog.String("id", id), slog.Bool("found", i >= 0))
	return i >= 0
}

// CycleStatus moves the task to the next status: pending, in progress,
// completed and back to pending.
func (s *Store) CycleStatus(ctx context.Context, id string) (models.Task, bool) {
	s.wait(ctx)
	task, found := s.mutate(id, func(t models.Task) models.Task {
		next := t.Status.Next()
		return models.TaskPatch{Status: &next}.Apply(t, s.now())
	})
	s.done("update", "Task updated successfully!", slog.String("id", id), slog.Bool("found", found))
	return task, found
}

// Share adds email to the collaborators of the task. Adding an existing
// collaborator changes nothing but the timestamp.
func (s *Store) Share(ctx context.Context, id, email string) (models.Task, bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		s.notifier.Error("Please enter a valid email address")
		return models.Task{}, false, fmt.Errorf("share %q: %w", email, ErrInvalidEmail)
	}

	s.wait(ctx)
	task, found := s.mutate(id, func(t models.Task) models.Task {
		shared := append(append([]string{}, t.SharedWith...), email)
		return models.TaskPatch{SharedWith: &shared}.Apply(t, s.now())
	})
	s.done("share", "Task shared with "+email, slog.String("id", id), slog.Bool("found", found))
	return task, found, nil
}

// Unshare removes email from the collaborators of the task.
func (s *Store) Unshare(ctx context.Context, id, email string) (models.Task, bool) {
	email = strings.TrimSpace(email)
	s.wait(ctx)
	task, found := s.mutate(id, func(t models.Task) models.Task {
		shared := make([]string, 0, len(t.SharedWith))
		for _, v := range t.SharedWith {
			if v != email {
				shared = append(shared, v)
			}
		}
		return models.TaskPatch{SharedWith: &shared}.Apply(t, s.now())
	})
	s.done("unshare", "Task updated successfully!", slog.String("id", id), slog.Bool("found", found))
	return task, found
}

// Refresh simulates reloading the collection from a backend.
func (s *Store) Refresh(ctx context.Context) {
	s.wait(ctx)
	s.notifier.Success("Tasks refreshed!")
}

// Stats counts the tasks per status.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Total: len(s.tasks)}
	for _, t := range s.tasks {
		switch t.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusCompleted:
			st.Completed++
		}
	}
	return st
}

// ShareLink builds the public link of a task under base.
func ShareLink(base, id string) string {
	return strings.TrimRight(base, "/") + "/task/" + id
}

func (s *Store) mutate(id string, fn func(models.Task) models.Task) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	s.tasks[i] = fn(s.tasks[i])
	return s.tasks[i].Clone(), true
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// wait applies the configured latency. A cancelled context stops the wait,
// the mutation itself still runs.
func (s *Store) wait(ctx context.Context) {
	if s.latency <= 0 {
		return
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (s *Store) done(op, msg string, attrs ...any) {
	if s.observer != nil {
		s.observer.ObserveMutation(op)
		s.mu.RLock()
		s.observer.SetTasks(len(s.tasks))
		s.mu.RUnlock()
	}
	s.logger.Debug("task store mutation", append([]any{slog.String("op", op)}, attrs...)...)
	s.notifier.Success(msg)
}
