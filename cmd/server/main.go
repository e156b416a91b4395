package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"vrp-dispatch-service/internal/adapters/cache"
	"vrp-dispatch-service/internal/adapters/distance"
	"vrp-dispatch-service/internal/adapters/repositories"
	"vrp-dispatch-service/internal/adapters/solver"
	"vrp-dispatch-service/internal/api"
	"vrp-dispatch-service/internal/config"
	"vrp-dispatch-service/internal/platform/db"
	"vrp-dispatch-service/internal/services"
	"vrp-dispatch-service/internal/worker"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, OSRM) behind ports, starts
// the solve workers and serves the HTTP API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}
	osrmURL := config.Get("OSRM_BASE_URL", "https://router.project-osrm.org")
	redisAddr := config.Get("REDIS_ADDR", "localhost:6379")
	port := config.Get("PORT", "8080")
	queueKey := config.Get("QUEUE_KEY", "vrp:tasks")

	roadFactor, err := strconv.ParseFloat(config.Get("ROAD_FACTOR", "1.0"), 64)
	if err != nil {
		log.Fatalf("ROAD_FACTOR must be a number: %v", err)
	}
	concurrency, err := strconv.Atoi(config.Get("WORKER_CONCURRENCY", "2"))
	if err != nil {
		log.Fatalf("WORKER_CONCURRENCY must be an integer: %v", err)
	}

	pg, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	if err := repositories.InitSchema(pg); err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	// OSRM provider uses the persistent Postgres cache to avoid repeated
	// matrix calls for recurring addresses.
	matrixCache := cache.NewSQLMatrixCache(pg)
	provider, err := distance.NewOSRMMatrixProvider(osrmURL, roadFactor, matrixCache)
	if err != nil {
		log.Fatal(err)
	}

	tasks := repositories.NewPostgresTaskRepository(pg)
	queue := worker.NewRedisQueue(rdb, queueKey)
	orchestrator := &services.Orchestrator{
		Provider:  provider,
		NewSolver: solver.New,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &worker.Worker{
		Queue:        queue,
		Tasks:        tasks,
		Orchestrator: orchestrator,
		Concurrency:  concurrency,
	}
	go w.Run(ctx)

	router := api.NewRouter(tasks, queue)

	// Submits are quick; long solves happen on the workers.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
