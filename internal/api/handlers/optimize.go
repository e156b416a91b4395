package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"vrp-dispatch-service/internal/api/dto"
	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/ports"
	"vrp-dispatch-service/internal/worker"
)

type OptimizeHandler struct {
	Tasks ports.TaskRepository
	Queue *worker.RedisQueue
}

// Submit validates an optimization request, persists it as a PENDING task
// and enqueues it for the workers. The response carries the task id callers
// poll the status endpoint with.
func (h *OptimizeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	variant := r.PathValue("variant")
	switch variant {
	case worker.TypeSingleTrip, worker.TypeMultiTrip, worker.TypeTimeWindow:
	default:
		writeError(w, r, http.StatusNotFound, fmt.Sprintf("unknown optimization variant %q", variant))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	defer r.Body.Close()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "read request body")
		return
	}

	if err := validatePayload(variant, body); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, r, http.StatusBadRequest, ve.Msg)
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	task := &ports.Task{
		ID:        uuid.NewString(),
		Type:      variant,
		Status:    ports.TaskPending,
		StatusMsg: "Task Received",
		Input:     body,
	}
	if err := h.Tasks.Insert(r.Context(), task); err != nil {
		log.Printf("insert task failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := h.Queue.Enqueue(r.Context(), task.ID); err != nil {
		log.Printf("enqueue task %s failed: %v", task.ID, err)
		if cerr := h.Tasks.Complete(r.Context(), task.ID, ports.TaskFailed, "Queue Unavailable", nil); cerr != nil {
			log.Printf("mark task %s failed: %v", task.ID, cerr)
		}
		writeError(w, r, http.StatusServiceUnavailable, "job queue unavailable")
		return
	}

	writeJSON(w, r, http.StatusAccepted, dto.Envelope{
		Status:  "success",
		Message: "Task Submitted",
		Data: map[string]string{
			"task_id":    task.ID,
			"status_url": fmt.Sprintf("/routeoptimization/status/%s/%s", variant, task.ID),
		},
	})
}

// validatePayload runs the full request validation up front, so malformed
// requests are rejected synchronously instead of failing inside a worker.
func validatePayload(variant string, body []byte) error {
	dec := func(v any) error {
		d := json.NewDecoder(bytes.NewReader(body))
		d.DisallowUnknownFields()
		if err := d.Decode(v); err != nil {
			return err
		}
		if err := d.Decode(&struct{}{}); err != io.EOF {
			return &domain.ValidationError{Msg: "body must contain only one JSON object"}
		}
		return nil
	}

	switch variant {
	case worker.TypeSingleTrip:
		var payload dto.SingleTripRequestDTO
		if err := dec(&payload); err != nil {
			return err
		}
		_, _, err := payload.ToSingleTrip()
		return err
	case worker.TypeMultiTrip:
		var payload dto.MultiTripRequestDTO
		if err := dec(&payload); err != nil {
			return err
		}
		_, _, err := payload.ToMultiTrip()
		return err
	default:
		var payload dto.TimeWindowRequestDTO
		if err := dec(&payload); err != nil {
			return err
		}
		_, _, err := payload.ToTimeWindow()
		return err
	}
}
