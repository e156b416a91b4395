package api

import (
	"net/http"

	"vrp-dispatch-service/internal/api/handlers"
	"vrp-dispatch-service/internal/metrics"
	"vrp-dispatch-service/internal/ports"
	"vrp-dispatch-service/internal/worker"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(tasks ports.TaskRepository, queue *worker.RedisQueue) http.Handler {
	mux := http.NewServeMux()

	optimizeHandler := &handlers.OptimizeHandler{Tasks: tasks, Queue: queue}
	statusHandler := &handlers.StatusHandler{Tasks: tasks}
	healthHandler := &handlers.HealthHandler{Tasks: tasks, Queue: queue}

	mux.HandleFunc("/routeoptimization/optimize/{variant}", optimizeHandler.Submit)
	mux.HandleFunc("/routeoptimization/status/{variant}/{task_id}", statusHandler.Status)
	mux.HandleFunc("/routeoptimization/eta", handlers.ETA)
	mux.HandleFunc("/routeoptimization/health", healthHandler.Health)
	mux.HandleFunc("/health", handlers.Liveness)
	mux.Handle("/metrics", metrics.Handler())

	return loggingMiddleware(mux)
}
