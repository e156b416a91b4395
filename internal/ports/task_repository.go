package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrTaskNotFound is returned when a task id is not in the store.
var ErrTaskNotFound = errors.New("task not found")

// Task statuses, mirroring what callers poll for.
const (
	TaskPending = "PENDING"
	TaskWorking = "WORKING"
	TaskSuccess = "SUCCESS"
	TaskFailed  = "FAILED"
)

// Task is the persisted job record for one optimization request, keyed by
// an opaque task identifier.
type Task struct {
	ID        string
	Type      string
	Status    string
	StatusMsg string
	Input     json.RawMessage
	Output    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskStats summarizes the task table for the health endpoint.
type TaskStats struct {
	Total   int
	Success int
	Pending int
}

// TaskRepository is the boundary to the persisted task store.
type TaskRepository interface {
	Insert(ctx context.Context, task *Task) error

	// UpdateStatus moves a task through its lifecycle without touching output.
	UpdateStatus(ctx context.Context, id, status, statusMsg string) error

	// Complete records the terminal status together with the solve output.
	Complete(ctx context.Context, id, status, statusMsg string, output json.RawMessage) error

	Get(ctx context.Context, id string) (*Task, error)

	// Recent returns up to limit tasks, newest first.
	Recent(ctx context.Context, limit int) ([]*Task, error)

	Stats(ctx context.Context) (TaskStats, error)
}
