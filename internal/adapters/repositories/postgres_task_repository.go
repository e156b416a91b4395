package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vrp-dispatch-service/internal/ports"
)

// Postgres-backed implementation of the TaskRepository port.
type PostgresTaskRepository struct{ DB *sql.DB }

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

func (s *PostgresTaskRepository) Insert(ctx context.Context, task *ports.Task) error {
	if s.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	INSERT INTO vrp_tasks (task_id, task_type, status, status_msg, input)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := s.DB.ExecContext(ctx, query, task.ID, task.Type, task.Status, task.StatusMsg, []byte(task.Input)); err != nil {
		return fmt.Errorf("insert task %s: %w", task.ID, err)
	}

	return nil
}

func (s *PostgresTaskRepository) UpdateStatus(ctx context.Context, id, status, statusMsg string) error {
	if s.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	UPDATE vrp_tasks
	SET status = $2, status_msg = $3, updated_at = now()
	WHERE task_id = $1;
	`
	res, err := s.DB.ExecContext(ctx, query, id, status, statusMsg)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update task %s: %w", id, ports.ErrTaskNotFound)
	}

	return nil
}

func (s *PostgresTaskRepository) Complete(ctx context.Context, id, status, statusMsg string, output json.RawMessage) error {
	if s.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	UPDATE vrp_tasks
	SET status = $2, status_msg = $3, output = $4, updated_at = now()
	WHERE task_id = $1;
	`
	res, err := s.DB.ExecContext(ctx, query, id, status, statusMsg, []byte(output))
	if err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("complete task %s: %w", id, ports.ErrTaskNotFound)
	}

	return nil
}

func (s *PostgresTaskRepository) Get(ctx context.Context, id string) (*ports.Task, error) {
	if s.DB == nil {
		return nil, errors.New("task repository: DB is nil")
	}

	query := `
	SELECT task_id, task_type, status, status_msg, input, COALESCE(output, 'null'::jsonb), created_at, updated_at
	FROM vrp_tasks
	WHERE task_id = $1;
	`
	t := &ports.Task{}
	var input, output []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Type, &t.Status, &t.StatusMsg, &input, &output, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ports.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	t.Input = input
	t.Output = output

	return t, nil
}

// Recent returns up to limit tasks, newest first.
func (s *PostgresTaskRepository) Recent(ctx context.Context, limit int) ([]*ports.Task, error) {
	if s.DB == nil {
		return nil, errors.New("task repository: DB is nil")
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
	SELECT task_id, task_type, status, status_msg, created_at, updated_at
	FROM vrp_tasks
	ORDER BY created_at DESC
	LIMIT $1;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent tasks: query vrp_tasks table: %w", err)
	}
	defer rows.Close()

	tasks := make([]*ports.Task, 0, limit)
	for rows.Next() {
		t := &ports.Task{}
		if err := rows.Scan(&t.ID, &t.Type, &t.Status, &t.StatusMsg, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("recent tasks: scan row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent tasks: row iteration: %w", err)
	}

	return tasks, nil
}

func (s *PostgresTaskRepository) Stats(ctx context.Context) (ports.TaskStats, error) {
	if s.DB == nil {
		return ports.TaskStats{}, errors.New("task repository: DB is nil")
	}

	query := `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'SUCCESS'),
		COUNT(*) FILTER (WHERE status IN ('PENDING', 'WORKING'))
	FROM vrp_tasks;
	`
	var stats ports.TaskStats
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Success, &stats.Pending); err != nil {
		return ports.TaskStats{}, fmt.Errorf("task stats: %w", err)
	}

	return stats, nil
}
