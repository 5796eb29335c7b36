package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_api/internal/domain"
	"task_api/internal/repository"

	"github.com/google/uuid"
)

// TaskStore persists tasks. Every method that takes an owner must ignore rows
// belonging to anyone else and report them as repository.ErrNotFound.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetForOwner(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error)
	ListForOwner(ctx context.Context, owner uuid.UUID, f domain.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	DeleteForOwner(ctx context.Context, id, owner uuid.UUID) error
}

// TaskNotifier receives committed task changes, e.g. to push them to the
// owner's open connections.
type TaskNotifier interface {
	Notify(owner uuid.UUID, kind string, task *domain.Task)
}

type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required,max=100,nonul"`
	Description string  `json:"description" validate:"required,max=500,nonul"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate" validate:"omitempty,isodate"`
}

// UpdateTaskInput is a partial update: nil fields are left untouched and
// DueDate set to null clears the due date.
type UpdateTaskInput struct {
	Title       *string      `json:"title" validate:"omitnil,min=1,max=100,nonul"`
	Description *string      `json:"description" validate:"omitnil,min=1,max=500,nonul"`
	Status      *string      `json:"status" validate:"omitnil,oneof=pending in-progress completed"`
	Priority    *string      `json:"priority" validate:"omitnil,oneof=low medium high"`
	DueDate     OptionalDate `json:"dueDate"`
}

// ListTasksInput holds raw query values; Status and Priority may be comma
// separated lists.
type ListTasksInput struct {
	Status   string
	Priority string
	Search   string
}

type TaskService struct {
	store    TaskStore
	notifier TaskNotifier
}

func NewTaskService(store TaskStore, notifier TaskNotifier) *TaskService {
	return &TaskService{store: store, notifier: notifier}
}

func (s *TaskService) List(ctx context.Context, owner uuid.UUID, in ListTasksInput) ([]*domain.Task, error) {
	var f domain.TaskFilter
	for _, v := range splitCSV(in.Status) {
		st := domain.TaskStatus(v)
		if !st.Valid() {
			return nil, invalid("Status", messages["Status.oneof"])
		}
		f.Statuses = append(f.Statuses, st)
	}
	for _, v := range splitCSV(in.Priority) {
		p := domain.TaskPriority(v)
		if !p.Valid() {
			return nil, invalid("Priority", messages["Priority.oneof"])
		}
		f.Priorities = append(f.Priorities, p)
	}
	f.Search = strings.TrimSpace(in.Search)

	tasks, err := s.store.ListForOwner(ctx, owner, f)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, owner, id uuid.UUID) (*domain.Task, error) {
	t, err := s.store.GetForOwner(ctx, id, owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Create stores a task owned by owner; ownership never comes from input.
func (s *TaskService) Create(ctx context.Context, owner uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	trimPtr(in.DueDate)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.New(),
		UserID:      owner,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatusPending,
		Priority:    domain.TaskPriorityMedium,
	}
	if in.Status != "" {
		t.Status = domain.TaskStatus(in.Status)
	}
	if in.Priority != "" {
		t.Priority = domain.TaskPriority(in.Priority)
	}
	if in.DueDate != nil {
		due, _ := ParseDate(*in.DueDate)
		t.DueDate = &due
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.notify(owner, domain.TaskEventCreated, t)
	return t, nil
}

// Update validates the whole input before looking the task up, so an
// invalid request never mutates anything.
func (s *TaskService) Update(ctx context.Context, owner, id uuid.UUID, in UpdateTaskInput) (*domain.Task, error) {
	trimPtr(in.Title)
	trimPtr(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	var due *time.Time
	if in.DueDate.Set && in.DueDate.Value != nil {
		d, err := ParseDate(strings.TrimSpace(*in.DueDate.Value))
		if err != nil {
			return nil, invalid("DueDate", messages["DueDate.isodate"])
		}
		due = &d
	}

	t, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = domain.TaskStatus(*in.Status)
	}
	if in.Priority != nil {
		t.Priority = domain.TaskPriority(*in.Priority)
	}
	if in.DueDate.Set {
		t.DueDate = due
	}

	if err := s.store.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.notify(owner, domain.TaskEventUpdated, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.store.DeleteForOwner(ctx, id, owner); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.notify(owner, domain.TaskEventDeleted, &domain.Task{ID: id, UserID: owner})
	return nil
}

func (s *TaskService) notify(owner uuid.UUID, kind string, t *domain.Task) {
	if s.notifier != nil {
		s.notifier.Notify(owner, kind, t)
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
