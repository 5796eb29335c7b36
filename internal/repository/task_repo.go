package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"task_api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TaskRepository never touches a row without the owner in the WHERE clause.
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, user_id, title, description, status, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetForOwner(ctx context.Context, id, owner uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListForOwner returns the owner's tasks newest first.
func (r *TaskRepository) ListForOwner(ctx context.Context, owner uuid.UUID, f domain.TaskFilter) ([]*domain.Task, error) {
	query, args := buildListQuery(owner, f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return res, nil
}

// Update writes the mutable fields of t. Owner and id come from t and both
// must match the stored row.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = now()
		 WHERE id = $6 AND user_id = $7
		 RETURNING updated_at`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.ID, t.UserID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, id, owner uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func buildListQuery(owner uuid.UUID, f domain.TaskFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []any{owner}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		fmt.Fprintf(&sb, ` AND status = ANY($%d)`, len(args))
	}
	if len(f.Priorities) > 0 {
		priorities := make([]string, len(f.Priorities))
		for i, p := range f.Priorities {
			priorities[i] = string(p)
		}
		args = append(args, priorities)
		fmt.Fprintf(&sb, ` AND priority = ANY($%d)`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		fmt.Fprintf(&sb, ` AND (title ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\')`, len(args))
	}

	sb.WriteString(` ORDER BY created_at DESC, id DESC`)
	return sb.String(), args
}

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &status, &priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	return &t, nil
}
