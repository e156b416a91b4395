package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrp-dispatch-service/internal/ports"
)

// Integration test; runs only when TEST_DATABASE_URL points at a disposable
// Postgres instance.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func TestTaskLifecycle(t *testing.T) {
	repo := NewPostgresTaskRepository(testDB(t))
	ctx := context.Background()

	task := &ports.Task{
		ID:        uuid.NewString(),
		Type:      "singletrip",
		Status:    ports.TaskPending,
		StatusMsg: "Task Received",
		Input:     json.RawMessage(`{"warehouse_location": "0,0"}`),
	}
	if err := repo.Insert(ctx, task); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.UpdateStatus(ctx, task.ID, ports.TaskWorking, "Optimization Started"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	output := json.RawMessage(`{"optimized_status": true}`)
	if err := repo.Complete(ctx, task.ID, ports.TaskSuccess, "Optimization Completed", output); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := repo.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ports.TaskSuccess || got.StatusMsg != "Optimization Completed" {
		t.Fatalf("task = %+v", got)
	}
	if string(got.Output) != `{"optimized_status": true}` {
		t.Fatalf("output = %s", got.Output)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total < 1 || stats.Success < 1 {
		t.Fatalf("stats = %+v", stats)
	}

	recent, err := repo.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) == 0 {
		t.Fatal("recent returned no tasks")
	}
}

func TestGetUnknownTask(t *testing.T) {
	repo := NewPostgresTaskRepository(testDB(t))

	_, err := repo.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, ports.ErrTaskNotFound) {
		t.Fatalf("got %v, want ports.ErrTaskNotFound", err)
	}
}
