package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"vrp-dispatch-service/internal/api/dto"
	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/metrics"
	"vrp-dispatch-service/internal/ports"
	"vrp-dispatch-service/internal/services"
)

// Task types, also the path segments of the submit endpoints.
const (
	TypeSingleTrip = "singletrip"
	TypeMultiTrip  = "multipledriver"
	TypeTimeWindow = "multipledriverwithtimewindow"
)

// Worker drains the job queue and runs optimizations. Each task moves
// PENDING -> WORKING -> SUCCESS or FAILED; an infeasible model is a SUCCESS
// whose output carries optimized_status=false.
type Worker struct {
	Queue        *RedisQueue
	Tasks        ports.TaskRepository
	Orchestrator *services.Orchestrator
	Concurrency  int
}

// Run blocks until the context is cancelled, processing tasks on
// Concurrency goroutines.
func (w *Worker) Run(ctx context.Context) {
	n := w.Concurrency
	if n <= 0 {
		n = 2
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.reportQueueDepth(ctx)
	}()

	wg.Wait()
}

func (w *Worker) reportQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := w.Queue.Len(ctx); err == nil {
				metrics.SetQueueDepth(n)
			}
		}
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		id, ok, err := w.Queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: dequeue failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			continue
		}
		w.process(ctx, id)
	}
}

func (w *Worker) process(ctx context.Context, id string) {
	task, err := w.Tasks.Get(ctx, id)
	if err != nil {
		log.Printf("worker: load task %s: %v", id, err)
		return
	}

	if err := w.Tasks.UpdateStatus(ctx, id, ports.TaskWorking, "Optimization Started"); err != nil {
		log.Printf("worker: mark task %s working: %v", id, err)
	}

	start := time.Now()
	output, outcome, err := w.runTask(ctx, task)
	metrics.ObserveSolve(task.Type, outcome, time.Since(start))

	if err != nil {
		log.Printf("worker: task %s (%s) failed: %v", id, task.Type, err)
		msg, _ := json.Marshal(map[string]string{"error": err.Error()})
		if err := w.Tasks.Complete(ctx, id, ports.TaskFailed, "Optimization Failed", msg); err != nil {
			log.Printf("worker: mark task %s failed: %v", id, err)
		}
		return
	}

	if err := w.Tasks.Complete(ctx, id, ports.TaskSuccess, "Optimization Completed", output); err != nil {
		log.Printf("worker: mark task %s complete: %v", id, err)
	}
}

// runTask dispatches a task to its variant and returns the serialized plan.
func (w *Worker) runTask(ctx context.Context, task *ports.Task) (json.RawMessage, string, error) {
	var (
		plan     *domain.Plan
		excluded []string
		err      error
	)

	switch task.Type {
	case TypeSingleTrip:
		var payload dto.SingleTripRequestDTO
		if uerr := json.Unmarshal(task.Input, &payload); uerr != nil {
			return nil, "failed", fmt.Errorf("decode task input: %w", uerr)
		}
		var req services.SingleTripRequest
		req, excluded, err = payload.ToSingleTrip()
		if err == nil {
			plan, err = w.Orchestrator.SingleTrip(ctx, req)
		}

	case TypeMultiTrip:
		var payload dto.MultiTripRequestDTO
		if uerr := json.Unmarshal(task.Input, &payload); uerr != nil {
			return nil, "failed", fmt.Errorf("decode task input: %w", uerr)
		}
		var req services.MultiTripRequest
		req, excluded, err = payload.ToMultiTrip()
		if err == nil {
			plan, err = w.Orchestrator.MultiTrip(ctx, req)
		}

	case TypeTimeWindow:
		var payload dto.TimeWindowRequestDTO
		if uerr := json.Unmarshal(task.Input, &payload); uerr != nil {
			return nil, "failed", fmt.Errorf("decode task input: %w", uerr)
		}
		var req services.TimeWindowRequest
		req, excluded, err = payload.ToTimeWindow()
		if err == nil {
			plan, err = w.Orchestrator.MultiTripTimeWindows(ctx, req)
		}

	default:
		return nil, "failed", fmt.Errorf("unknown task type %q", task.Type)
	}

	if errors.Is(err, domain.ErrInfeasible) {
		out, merr := json.Marshal(dto.Infeasible(excluded))
		if merr != nil {
			return nil, "failed", fmt.Errorf("encode infeasible output: %w", merr)
		}
		return out, "infeasible", nil
	}
	if err != nil {
		return nil, "failed", err
	}

	out, merr := json.Marshal(dto.FromPlan(plan, excluded))
	if merr != nil {
		return nil, "failed", fmt.Errorf("encode plan output: %w", merr)
	}
	return out, "success", nil
}
