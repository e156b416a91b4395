package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"vrp-dispatch-service/internal/api/dto"
	"vrp-dispatch-service/internal/ports"
)

type StatusHandler struct {
	Tasks ports.TaskRepository
}

type statusResponse struct {
	TaskID string          `json:"task_id"`
	Type   string          `json:"task_type"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Status reports the lifecycle state of a submitted task and, once the task
// is terminal, its output.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	taskID := r.PathValue("task_id")
	if _, err := uuid.Parse(taskID); err != nil {
		writeError(w, r, http.StatusBadRequest, "task_id must be a UUID")
		return
	}

	task, err := h.Tasks.Get(r.Context(), taskID)
	if errors.Is(err, ports.ErrTaskNotFound) {
		writeError(w, r, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		log.Printf("get task %s failed: %v", taskID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if variant := r.PathValue("variant"); variant != "" && variant != task.Type {
		writeError(w, r, http.StatusNotFound, "task not found for this variant")
		return
	}

	res := statusResponse{
		TaskID: task.ID,
		Type:   task.Type,
		Status: task.Status,
	}
	if task.Status == ports.TaskSuccess || task.Status == ports.TaskFailed {
		res.Result = task.Output
	}

	writeJSON(w, r, http.StatusOK, dto.Envelope{
		Status:  "success",
		Message: task.StatusMsg,
		Data:    res,
	})
}
