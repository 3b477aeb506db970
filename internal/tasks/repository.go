package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/K-nass/task-management/internal/platform/db"
	"github.com/K-nass/task-management/internal/shared"
)

// Repository persists tasks.
type Repository interface {
	Create(ctx context.Context, task Task) (*Task, error)
	ListByOwner(ctx context.Context, userID int64) ([]Task, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the row-locking operations used by mutations.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Task, error)
	Update(ctx context.Context, task Task) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const taskColumns = `id, title, description, status::text, user_id, created_at, updated_at`

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts task and returns the stored row.
func (r *PGRepository) Create(ctx context.Context, task Task) (*Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, user_id)
		VALUES ($1, $2, $3::task_status, $4)
		RETURNING `+taskColumns,
		task.Title, task.Description, string(task.Status), task.UserID)
	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("tasks: insert: %w", err)
	}
	return created, nil
}

// ListByOwner returns the user's tasks, newest first.
func (r *PGRepository) ListByOwner(ctx context.Context, userID int64) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("tasks: list: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("tasks: scan: %w", err)
		}
		out = append(out, *task)
	}
	return out, rows.Err()
}

// WithTx runs fn inside a transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, txRepo{q: tx})
	})
}

type txRepo struct {
	q dbtx
}

func (t txRepo) GetForUpdate(ctx context.Context, id int64) (*Task, error) {
	row := t.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("tasks: lock: %w", err)
	}
	return task, nil
}

func (t txRepo) Update(ctx context.Context, task Task) (*Task, error) {
	row := t.q.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, status = $4::task_status, updated_at = NOW()
		WHERE id = $1
		RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, string(task.Status))
	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("tasks: update: %w", err)
	}
	return updated, nil
}

func (t txRepo) Delete(ctx context.Context, id int64) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var (
		task   Task
		status string
	)
	if err := row.Scan(&task.ID, &task.Title, &task.Description, &status, &task.UserID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	task.Status = Status(status)
	return &task, nil
}

var _ Repository = (*PGRepository)(nil)
