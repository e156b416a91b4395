package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"vrp-dispatch-service/internal/adapters/distance"
	"vrp-dispatch-service/internal/adapters/solver"
	"vrp-dispatch-service/internal/ports"
	"vrp-dispatch-service/internal/services"
)

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*ports.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*ports.Task{}}
}

func (m *memTaskRepo) Insert(ctx context.Context, task *ports.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memTaskRepo) UpdateStatus(ctx context.Context, id, status, statusMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return errors.New("task not found")
	}
	t.Status, t.StatusMsg = status, statusMsg
	return nil
}

func (m *memTaskRepo) Complete(ctx context.Context, id, status, statusMsg string, output json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return errors.New("task not found")
	}
	t.Status, t.StatusMsg, t.Output = status, statusMsg, output
	return nil
}

func (m *memTaskRepo) Get(ctx context.Context, id string) (*ports.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, errors.New("task not found")
	}
	cp := *t
	return &cp, nil
}

func (m *memTaskRepo) Recent(ctx context.Context, limit int) ([]*ports.Task, error) {
	return nil, nil
}

func (m *memTaskRepo) Stats(ctx context.Context) (ports.TaskStats, error) {
	return ports.TaskStats{}, nil
}

func testQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, "test:tasks")
}

func testWorker(repo *memTaskRepo, queue *RedisQueue) *Worker {
	pairs := []distance.MockPair{
		{From: "0,0", To: "1,1", Km: 10},
		{From: "1,1", To: "0,0", Km: 10},
	}
	return &Worker{
		Queue: queue,
		Tasks: repo,
		Orchestrator: &services.Orchestrator{
			Provider:  distance.NewMockMatrixProvider(pairs),
			NewSolver: solver.New,
		},
		Concurrency: 1,
	}
}

func singleTripPayload() json.RawMessage {
	return json.RawMessage(`{
		"warehouse_location": "0,0",
		"orders": [
			{"order_id": "o1", "source": "0,0", "destination": "1,1", "quantity": 1}
		],
		"vehicle": {"capacity": 5},
		"time_limit_sec": 1
	}`)
}

func TestQueueFIFO(t *testing.T) {
	q := testQueue(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Enqueue(ctx, fmt.Sprintf("task-%d", i)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if n, err := q.Len(ctx); err != nil || n != 3 {
		t.Fatalf("len = %d (%v), want 3", n, err)
	}

	for i := 0; i < 3; i++ {
		id, ok, err := q.Dequeue(ctx)
		if err != nil || !ok {
			t.Fatalf("dequeue %d: ok=%v err=%v", i, ok, err)
		}
		if want := fmt.Sprintf("task-%d", i); id != want {
			t.Fatalf("dequeue %d = %q, want %q", i, id, want)
		}
	}
}

func TestProcessSingleTripTask(t *testing.T) {
	repo := newMemTaskRepo()
	w := testWorker(repo, testQueue(t))

	task := &ports.Task{
		ID:     "11111111-1111-1111-1111-111111111111",
		Type:   TypeSingleTrip,
		Status: ports.TaskPending,
		Input:  singleTripPayload(),
	}
	if err := repo.Insert(context.Background(), task); err != nil {
		t.Fatalf("insert: %v", err)
	}

	w.process(context.Background(), task.ID)

	got, err := repo.Get(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ports.TaskSuccess {
		t.Fatalf("status = %q (%s), want SUCCESS", got.Status, got.StatusMsg)
	}
	if got.StatusMsg != "Optimization Completed" {
		t.Fatalf("status msg = %q", got.StatusMsg)
	}

	var out struct {
		OptimizedStatus     bool     `json:"optimized_status"`
		OptimizedDistanceKm float64  `json:"optimized_distance_km"`
		DroppedOrders       []string `json:"dropped_orders"`
	}
	if err := json.Unmarshal(got.Output, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !out.OptimizedStatus {
		t.Fatal("expected optimized_status true")
	}
	if out.OptimizedDistanceKm != 20 {
		t.Fatalf("optimized distance = %f, want 20 (out and back)", out.OptimizedDistanceKm)
	}
	if len(out.DroppedOrders) != 0 {
		t.Fatalf("dropped = %v, want none", out.DroppedOrders)
	}
}

func TestProcessMarksBadPayloadFailed(t *testing.T) {
	repo := newMemTaskRepo()
	w := testWorker(repo, testQueue(t))

	task := &ports.Task{
		ID:     "22222222-2222-2222-2222-222222222222",
		Type:   TypeSingleTrip,
		Status: ports.TaskPending,
		Input:  json.RawMessage(`{"warehouse_location": "0,0", "orders": [], "vehicle": {"capacity": 5}}`),
	}
	if err := repo.Insert(context.Background(), task); err != nil {
		t.Fatalf("insert: %v", err)
	}

	w.process(context.Background(), task.ID)

	got, _ := repo.Get(context.Background(), task.ID)
	if got.Status != ports.TaskFailed {
		t.Fatalf("status = %q, want FAILED", got.Status)
	}
	if got.StatusMsg != "Optimization Failed" {
		t.Fatalf("status msg = %q", got.StatusMsg)
	}
}

func TestProcessUnknownTypeFails(t *testing.T) {
	repo := newMemTaskRepo()
	w := testWorker(repo, testQueue(t))

	task := &ports.Task{
		ID:     "33333333-3333-3333-3333-333333333333",
		Type:   "teleportation",
		Status: ports.TaskPending,
		Input:  singleTripPayload(),
	}
	if err := repo.Insert(context.Background(), task); err != nil {
		t.Fatalf("insert: %v", err)
	}

	w.process(context.Background(), task.ID)

	got, _ := repo.Get(context.Background(), task.ID)
	if got.Status != ports.TaskFailed {
		t.Fatalf("status = %q, want FAILED", got.Status)
	}
}

func TestRunDrainsQueue(t *testing.T) {
	repo := newMemTaskRepo()
	queue := testQueue(t)
	w := testWorker(repo, queue)

	task := &ports.Task{
		ID:     "44444444-4444-4444-4444-444444444444",
		Type:   TypeSingleTrip,
		Status: ports.TaskPending,
		Input:  singleTripPayload(),
	}
	if err := repo.Insert(context.Background(), task); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := queue.Enqueue(context.Background(), task.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, _ := repo.Get(context.Background(), task.ID)
		if got != nil && got.Status == ports.TaskSuccess {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("task did not complete in time")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
