package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcala/biaslab/internal/ai"
	"github.com/mcala/biaslab/internal/api"
	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/config"
	"github.com/mcala/biaslab/internal/db"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/repository/sqlite"
	"github.com/mcala/biaslab/internal/services"
	"github.com/mcala/biaslab/internal/state"
	"github.com/mcala/biaslab/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("BiasLab Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("max_state_bytes=%d", cfg.MaxStateBytes)
	log.Debug("review_queue_limit=%d", cfg.ReviewQueueLimit)
	log.Debug("weak_set_threshold=%d", cfg.WeakSetThreshold)
	log.Debug("openai_model=%s", cfg.OpenAIModel)
	log.Debug("prefetch_worker_count=%d", cfg.PrefetchWorkerCount)
	log.Debug("prefetch_queue_size=%d", cfg.PrefetchQueueSize)

	// Load the concept catalog
	cat, err := catalog.Load()
	if err != nil {
		log.Error("failed to load concept catalog: %v", err)
		os.Exit(1)
	}
	log.Info("catalog loaded: %d biases, %d fallacies",
		cat.Size(models.ModePsychology), cat.Size(models.ModeLogic))

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories and persisted state
	blobs := sqlite.NewBlobRepository(database.DB, 2*cfg.MaxStateBytes)
	reviews := sqlite.NewReviewLogRepository(database.DB)

	ctx, cancel := context.WithCancel(context.Background())
	manager := state.NewManager(ctx, state.NewStore(blobs, cfg.MaxStateBytes))

	// LLM collaborator
	generator := ai.NewClient(ai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.OpenAIModel,
		Timeout:    time.Duration(cfg.AITimeoutSeconds) * time.Second,
		MaxRetries: cfg.AIMaxRetries,
	})

	// Worker pool for quiz prefetching
	pool := worker.NewPool(cfg.PrefetchWorkerCount, cfg.PrefetchQueueSize)

	// Initialize services
	studyService := services.NewStudyService(cat, manager, reviews, cfg.ReviewQueueLimit)
	quizService := services.NewQuizService(cat, manager, reviews, generator, cfg.WeakSetThreshold)
	simulationService := services.NewSimulationService(cat, manager, reviews, generator)
	chatService := services.NewChatService(manager, generator)
	stateService := services.NewStateService(cat, manager, reviews,
		quizService.Invalidate, chatService.Invalidate)

	srv := &api.Server{
		Catalog:     cat,
		Study:       studyService,
		Quizzes:     quizService,
		Simulations: simulationService,
		Chat:        chatService,
		State:       stateService,
		Pool:        pool,
	}

	pool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: chat responses stream for as long as the model talks.
		IdleTimeout: 60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	cancel()
	pool.Stop()

	log.Debug("saving state")
	manager.Close(shutdownCtx)

	log.Info("===========================================")
	log.Info("BiasLab Server Stopped")
	log.Info("===========================================")
}
