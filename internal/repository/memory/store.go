// Package memory keeps users, tasks and audit entries in process memory. It
// mirrors the Postgres repositories (ownership scoping, case-insensitive
// email uniqueness, newest-first ordering) and backs local runs started with
// DATABASE_URL=memory:// as well as the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"task_api/internal/domain"
	"task_api/internal/repository"

	"github.com/google/uuid"
)

type Store struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]domain.User
	tasks   map[uuid.UUID]taskRow
	audit   []domain.AuditLog
	seq     int64
	auditID int64
	now     func() time.Time
}

type taskRow struct {
	task domain.Task
	seq  int64
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]domain.User),
		tasks: make(map[uuid.UUID]taskRow),
		now:   time.Now,
	}
}

func (s *Store) Users() *UserRepository     { return &UserRepository{s: s} }
func (s *Store) Tasks() *TaskRepository     { return &TaskRepository{s: s} }
func (s *Store) Audit() *AuditRepository    { return &AuditRepository{s: s} }
func (s *Store) Ping(context.Context) error { return nil }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailTakenLocked(u.Email, uuid.Nil) {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.s.emailTakenLocked(u.Email, u.ID) {
		return repository.ErrDuplicate
	}
	stored.Name = u.Name
	stored.Email = u.Email
	stored.UpdatedAt = r.s.now()
	r.s.users[u.ID] = stored
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) emailTakenLocked(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type TaskRepository struct{ s *Store }

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.seq++
	r.s.tasks[t.ID] = taskRow{task: copyTask(*t), seq: r.s.seq}
	return nil
}

func (r *TaskRepository) GetForOwner(_ context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tasks[id]
	if !ok || row.task.UserID != owner {
		return nil, repository.ErrNotFound
	}
	t := copyTask(row.task)
	return &t, nil
}

func (r *TaskRepository) ListForOwner(_ context.Context, owner uuid.UUID, f domain.TaskFilter) ([]*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]taskRow, 0)
	for _, row := range r.s.tasks {
		if row.task.UserID == owner && matches(row.task, f) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	res := make([]*domain.Task, len(rows))
	for i, row := range rows {
		t := copyTask(row.task)
		res[i] = &t
	}
	return res, nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[t.ID]
	if !ok || row.task.UserID != t.UserID {
		return repository.ErrNotFound
	}
	row.task.Title = t.Title
	row.task.Description = t.Description
	row.task.Status = t.Status
	row.task.Priority = t.Priority
	row.task.DueDate = copyTime(t.DueDate)
	row.task.UpdatedAt = r.s.now()
	r.s.tasks[t.ID] = row
	t.UpdatedAt = row.task.UpdatedAt
	return nil
}

func (r *TaskRepository) DeleteForOwner(_ context.Context, id, owner uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[id]
	if !ok || row.task.UserID != owner {
		return repository.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func matches(t domain.Task, f domain.TaskFilter) bool {
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func copyTask(t domain.Task) domain.Task {
	t.DueDate = copyTime(t.DueDate)
	return t
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type AuditRepository struct{ s *Store }

func (r *AuditRepository) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.auditID++
	entry := *log
	entry.ID = r.s.auditID
	entry.CreatedAt = r.s.now()
	r.s.audit = append(r.s.audit, entry)
	log.ID, log.CreatedAt = entry.ID, entry.CreatedAt
	return nil
}

func (r *AuditRepository) GetByUserID(_ context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res := make([]*domain.AuditLog, 0)
	for i := len(r.s.audit) - 1; i >= 0 && len(res) < limit; i-- {
		if r.s.audit[i].UserID == userID {
			entry := r.s.audit[i]
			res = append(res, &entry)
		}
	}
	return res, nil
}
