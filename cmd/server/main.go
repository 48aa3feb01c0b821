package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"farecalc/internal/app"
	"farecalc/internal/clock"
	"farecalc/internal/config"
	"farecalc/internal/handler"
	internalRedis "farecalc/internal/redis"
	"farecalc/internal/repository"
	"farecalc/internal/repository/memory"
	"farecalc/internal/repository/postgres"
	"farecalc/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Initialize database holding the trip log.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis. Trips must keep working at the roadside when the
	// durable store is down, so a failed connection degrades to an
	// in-process snapshot store instead of aborting startup.
	var snapshots repository.SnapshotStore
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Printf("redis unavailable, falling back to in-memory snapshots: %v", err)
		redisClient = nil
		snapshots = memory.NewSnapshotStore()
	} else {
		defer redisClient.Close()
		log.Println("Connected to Redis")
		snapshots = internalRedis.NewSnapshotStore(redisClient, cfg.Workflow.SnapshotTTL)
	}

	// Wire dependencies.
	workflows := service.NewWorkflowService(
		clock.SystemClock{},
		snapshots,
		postgres.NewTripRepository(db),
		cfg.Workflow.TickInterval,
	)
	server := wireServer(db, redisClient, nrApp, cfg, workflows)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	// Stop timer callbacks. In-flight trips stay persisted through the
	// last autosave and resume on the next start.
	workflows.Shutdown()

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, workflows *service.WorkflowService) *http.Server {
	reportService := service.NewReportService(postgres.NewTripRepository(db))

	tripHandler := handler.NewTripHandler(workflows)
	reportHandler := handler.NewReportHandler(reportService)

	router := app.NewRouter(app.RouterDeps{
		TripHandler:   tripHandler,
		ReportHandler: reportHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
