package handlers

import (
	"log"
	"net/http"
	"time"

	"vrp-dispatch-service/internal/api/dto"
	"vrp-dispatch-service/internal/ports"
	"vrp-dispatch-service/internal/worker"
)

type HealthHandler struct {
	Tasks ports.TaskRepository
	Queue *worker.RedisQueue
}

type recentTask struct {
	TaskID    string    `json:"task_id"`
	Type      string    `json:"task_type"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type healthResponse struct {
	TotalTasks   int          `json:"total_tasks"`
	SuccessTasks int          `json:"success_tasks"`
	PendingTasks int          `json:"pending_tasks"`
	QueueDepth   int64        `json:"queue_depth"`
	RecentTasks  []recentTask `json:"recent_tasks"`
}

// Liveness answers load-balancer probes without touching any dependency.
func Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.Envelope{Status: "success", Message: "OK"})
}

// Health reports liveness together with a snapshot of the task table and
// the queue backlog.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.Tasks.Stats(r.Context())
	if err != nil {
		log.Printf("task stats failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	recent, err := h.Tasks.Recent(r.Context(), 10)
	if err != nil {
		log.Printf("recent tasks failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	depth := int64(0)
	if h.Queue != nil {
		if depth, err = h.Queue.Len(r.Context()); err != nil {
			log.Printf("queue length failed: %v", err)
			depth = -1
		}
	}

	res := healthResponse{
		TotalTasks:   stats.Total,
		SuccessTasks: stats.Success,
		PendingTasks: stats.Pending,
		QueueDepth:   depth,
		RecentTasks:  make([]recentTask, 0, len(recent)),
	}
	for _, t := range recent {
		res.RecentTasks = append(res.RecentTasks, recentTask{
			TaskID:    t.ID,
			Type:      t.Type,
			Status:    t.Status,
			UpdatedAt: t.UpdatedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, dto.Envelope{
		Status:  "success",
		Message: "Service Healthy",
		Data:    res,
	})
}
