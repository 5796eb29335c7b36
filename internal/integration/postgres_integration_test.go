package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"task_api/internal/db"
	"task_api/internal/domain"
	"task_api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openHandle migrates the database behind DATABASE_URL and returns a handle
// to it. Tests skip when the variable is unset.
func openHandle(t *testing.T) *db.Handle {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.Migrate(ctx, dsn, "up"))

	h := db.NewHandle(dsn)
	t.Cleanup(h.Close)
	require.NoError(t, h.Ping(ctx))
	return h
}

func newUser(t *testing.T, users *repository.UserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Name: "it", Email: email, PasswordHash: "$2a$04$placeholder"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8] + "@example.com"
}

func TestUserRepository_EmailUniqueAnyCase(t *testing.T) {
	h := openHandle(t)
	users := repository.NewUserRepository(h)
	ctx := context.Background()

	email := uniqueEmail("dup")
	u := newUser(t, users, email)
	assert.False(t, u.CreatedAt.IsZero())

	err := users.Create(ctx, &domain.User{ID: uuid.New(), Name: "x", Email: "DUP" + email[3:], PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := users.GetByEmail(ctx, "DUP"+email[3:])
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskRepository_OwnershipAndFilters(t *testing.T) {
	h := openHandle(t)
	users := repository.NewUserRepository(h)
	tasks := repository.NewTaskRepository(h)
	ctx := context.Background()

	alice := newUser(t, users, uniqueEmail("alice"))
	bob := newUser(t, users, uniqueEmail("bob"))

	mk := func(owner uuid.UUID, title, desc string, st domain.TaskStatus, pr domain.TaskPriority) *domain.Task {
		task := &domain.Task{ID: uuid.New(), UserID: owner, Title: title, Description: desc, Status: st, Priority: pr}
		require.NoError(t, tasks.Create(ctx, task))
		return task
	}
	first := mk(alice.ID, "100% done", "literal percent", domain.TaskStatusCompleted, domain.TaskPriorityLow)
	mk(alice.ID, "Groceries", "buy MILK", domain.TaskStatusPending, domain.TaskPriorityHigh)
	mk(bob.ID, "milk for bob", "x", domain.TaskStatusPending, domain.TaskPriorityHigh)

	list, err := tasks.ListForOwner(ctx, alice.ID, domain.TaskFilter{Search: "milk"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Groceries", list[0].Title)

	list, err = tasks.ListForOwner(ctx, alice.ID, domain.TaskFilter{Search: "%"})
	require.NoError(t, err)
	require.Len(t, list, 1, "wildcards match literally")
	assert.Equal(t, first.ID, list[0].ID)

	list, err = tasks.ListForOwner(ctx, alice.ID, domain.TaskFilter{
		Statuses: []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusCompleted},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Groceries", list[0].Title, "newest first")

	_, err = tasks.GetForOwner(ctx, first.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	stolen := *first
	stolen.UserID = bob.ID
	stolen.Title = "mine"
	assert.ErrorIs(t, tasks.Update(ctx, &stolen), repository.ErrNotFound)
	assert.ErrorIs(t, tasks.DeleteForOwner(ctx, first.ID, bob.ID), repository.ErrNotFound)

	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	first.Status = domain.TaskStatusInProgress
	first.DueDate = &due
	require.NoError(t, tasks.Update(ctx, first))

	got, err := tasks.GetForOwner(ctx, first.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	require.NoError(t, tasks.DeleteForOwner(ctx, first.ID, alice.ID))
	_, err = tasks.GetForOwner(ctx, first.ID, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuditRepository(t *testing.T) {
	h := openHandle(t)
	users := repository.NewUserRepository(h)
	audit := repository.NewAuditRepository(h)
	ctx := context.Background()

	u := newUser(t, users, uniqueEmail("audit"))
	require.NoError(t, audit.Create(ctx, &domain.AuditLog{UserID: u.ID, Action: domain.AuditActionLogin, Category: domain.AuditCategoryAuth, IP: "127.0.0.1"}))
	require.NoError(t, audit.Create(ctx, &domain.AuditLog{Action: domain.AuditActionLoginFailed, Category: domain.AuditCategoryAuth, Details: map[string]any{"email": "x"}}))

	logs, err := audit.GetByUserID(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionLogin, logs[0].Action)
	assert.Equal(t, u.ID, logs[0].UserID)
}
