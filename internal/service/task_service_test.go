package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"task_api/internal/domain"
	"task_api/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	owner uuid.UUID
	kind  string
	task  uuid.UUID
}

type recorder struct{ events []recordedEvent }

func (r *recorder) Notify(owner uuid.UUID, kind string, t *domain.Task) {
	r.events = append(r.events, recordedEvent{owner: owner, kind: kind, task: t.ID})
}

func newTasks(t *testing.T) (*TaskService, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewTaskService(memory.NewStore().Tasks(), rec), rec
}

func strp(s string) *string { return &s }

func TestTaskCreate_Defaults(t *testing.T) {
	svc, rec := newTasks(t)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, CreateTaskInput{Title: " T ", Description: "D"})
	require.NoError(t, err)
	assert.Equal(t, "T", task.Title)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, []recordedEvent{{owner, domain.TaskEventCreated, task.ID}}, rec.events)
}

func TestTaskCreate_Validation(t *testing.T) {
	svc, rec := newTasks(t)
	owner := uuid.New()

	cases := []struct {
		in   CreateTaskInput
		want string
	}{
		{CreateTaskInput{Description: "D"}, "Title is required"},
		{CreateTaskInput{Title: "   ", Description: "D"}, "Title is required"},
		{CreateTaskInput{Title: strings.Repeat("a", 101), Description: "D"}, "Title must be at most 100 characters"},
		{CreateTaskInput{Title: "T"}, "Description is required"},
		{CreateTaskInput{Title: "T", Description: strings.Repeat("a", 501)}, "Description must be at most 500 characters"},
		{CreateTaskInput{Title: "T", Description: "D", Status: "done"}, "Status must be one of pending, in-progress, completed"},
		{CreateTaskInput{Title: "T", Description: "D", Priority: "urgent"}, "Priority must be one of low, medium, high"},
		{CreateTaskInput{Title: "T", Description: "D", DueDate: strp("31/12/2030")}, "Invalid date format"},
		// first failure wins
		{CreateTaskInput{Status: "done", Priority: "urgent"}, "Title is required"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), owner, tc.in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tc.want, verr.Message)
	}
	assert.Empty(t, rec.events)

	tasks, err := svc.List(context.Background(), owner, ListTasksInput{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskCreate_BoundaryLengthsAndDates(t *testing.T) {
	svc, _ := newTasks(t)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, CreateTaskInput{
		Title:       strings.Repeat("a", 100),
		Description: strings.Repeat("b", 500),
		DueDate:     strp("2030-06-01T10:30:00+02:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2030, 6, 1, 8, 30, 0, 0, time.UTC)))

	_, err = svc.Create(context.Background(), owner, CreateTaskInput{Title: "T", Description: "D", DueDate: strp("")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid date format", verr.Message)

	task, err = svc.Create(context.Background(), owner, CreateTaskInput{Title: "T", Description: "D"})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
}

func TestTaskInput_RejectsNUL(t *testing.T) {
	svc, rec := newTasks(t)
	owner := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, owner, CreateTaskInput{Title: "a\x00b", Description: "D"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title", verr.Field)

	_, err = svc.Create(ctx, owner, CreateTaskInput{Title: "T", Description: "x\x00"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Description", verr.Field)

	task, err := svc.Create(ctx, owner, CreateTaskInput{Title: "T", Description: "D"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, owner, task.ID, UpdateTaskInput{Title: strp("\x00")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title", verr.Field)
	assert.Len(t, rec.events, 1)
}

func TestTaskUpdate_PartialMerge(t *testing.T) {
	svc, rec := newTasks(t)
	owner := uuid.New()
	ctx := context.Background()

	task, err := svc.Create(ctx, owner, CreateTaskInput{Title: "T", Description: "D", Priority: "high", DueDate: strp("2030-01-01")})
	require.NoError(t, err)

	got, err := svc.Update(ctx, owner, task.ID, UpdateTaskInput{Status: strp("completed")})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "D", got.Description)
	assert.Equal(t, domain.TaskPriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)

	var in UpdateTaskInput
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate": null}`), &in))
	got, err = svc.Update(ctx, owner, task.ID, in)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	assert.Len(t, rec.events, 3)
	assert.Equal(t, domain.TaskEventUpdated, rec.events[2].kind)
}

func TestTaskUpdate_InvalidInputNeverMutates(t *testing.T) {
	svc, _ := newTasks(t)
	owner := uuid.New()
	ctx := context.Background()
	task, err := svc.Create(ctx, owner, CreateTaskInput{Title: "T", Description: "D"})
	require.NoError(t, err)

	for _, in := range []UpdateTaskInput{
		{Title: strp("")},
		{Title: strp("new"), Priority: strp("urgent")},
		{Description: strp(strings.Repeat("x", 501))},
		{Title: strp("new"), DueDate: OptionalDate{Set: true, Value: strp("soon")}},
	} {
		_, err := svc.Update(ctx, owner, task.ID, in)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	}

	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, domain.TaskPriorityMedium, got.Priority)
}

func TestTask_OwnershipScoping(t *testing.T) {
	svc, rec := newTasks(t)
	alice, bob := uuid.New(), uuid.New()
	ctx := context.Background()
	task, err := svc.Create(ctx, alice, CreateTaskInput{Title: "T", Description: "D"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = svc.Update(ctx, bob, task.ID, UpdateTaskInput{Title: strp("mine now")})
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, bob, task.ID), ErrTaskNotFound)

	got, err := svc.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Len(t, rec.events, 1)

	require.NoError(t, svc.Delete(ctx, alice, task.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, task.ID), ErrTaskNotFound)
	assert.Equal(t, domain.TaskEventDeleted, rec.events[1].kind)
}

func TestTaskList_Filters(t *testing.T) {
	svc, _ := newTasks(t)
	owner := uuid.New()
	ctx := context.Background()

	mk := func(title, desc, status, priority string) {
		_, err := svc.Create(ctx, owner, CreateTaskInput{Title: title, Description: desc, Status: status, Priority: priority})
		require.NoError(t, err)
	}
	mk("Alpha", "first", "pending", "low")
	mk("Beta", "contains ALPHA", "completed", "high")
	mk("Gamma", "third", "in-progress", "high")
	_, err := svc.Create(ctx, uuid.New(), CreateTaskInput{Title: "Alpha elsewhere", Description: "x"})
	require.NoError(t, err)

	titles := func(in ListTasksInput) []string {
		tasks, err := svc.List(ctx, owner, in)
		require.NoError(t, err)
		out := make([]string, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, t.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Gamma", "Beta", "Alpha"}, titles(ListTasksInput{}))
	assert.Equal(t, []string{"Beta", "Alpha"}, titles(ListTasksInput{Search: "alpha"}))
	assert.Equal(t, []string{"Gamma", "Beta"}, titles(ListTasksInput{Priority: "high"}))
	assert.Equal(t, []string{"Beta", "Alpha"}, titles(ListTasksInput{Status: "pending, completed"}))
	assert.Equal(t, []string{"Beta"}, titles(ListTasksInput{Status: "completed", Priority: "high", Search: "ALPHA"}))

	_, err = svc.List(ctx, owner, ListTasksInput{Priority: "high,urgent"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestNilNotifierIsAllowed(t *testing.T) {
	svc := NewTaskService(memory.NewStore().Tasks(), nil)
	_, err := svc.Create(context.Background(), uuid.New(), CreateTaskInput{Title: "T", Description: "D"})
	assert.NoError(t, err)
}
