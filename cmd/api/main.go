// cmd/api/main.go
// Main entry point for the matching service
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/auth"
	"github.com/imadgeboyega/kiekky-matchengine/internal/common/database"
	"github.com/imadgeboyega/kiekky-matchengine/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matchengine/internal/config"
	"github.com/imadgeboyega/kiekky-matchengine/internal/dating"
	"github.com/imadgeboyega/kiekky-matchengine/internal/logger"
	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

var startTime = time.Now()

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting Kiekky matching service")
	if envErr != nil {
		log.Warn("no .env file found, using environment variables", zap.Error(envErr))
	}

	// 3. Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatal("configuration validation failed", zap.Error(err))
	}
	log.Info("configuration loaded", zap.String("environment", cfg.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// 5. Connect to Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("continuing without Redis", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("connected to Redis")
		}
	} else {
		log.Warn("Redis URL not configured, change events stay in-process")
	}

	// 6. Run database migrations
	if err := database.Migrate(ctx, db, log.Named("migrations")); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// 7. Wire the matching engine
	repo := dating.NewPostgresRepository(db)

	var publishers dating.MultiPublisher
	var hub *dating.Hub
	if cfg.EnableRealtime {
		hub = dating.NewHub(log.Named("hub"))
		go hub.Run(ctx)
		publishers = append(publishers, hub)
	}
	if redisClient != nil {
		publishers = append(publishers, dating.NewRedisPublisher(redisClient, cfg.EventsChannelCompat, cfg.EventsChannelProfile))
	}

	service := dating.NewService(repo, repo, publishers, log.Named("compatibility"))
	ranker := dating.NewRankingService(repo, dating.RankingConfig{
		DefaultLimit:  cfg.RankingDefaultLimit,
		MaxLimit:      cfg.RankingMaxLimit,
		CandidatePool: cfg.RankingCandidatePool,
		MinScore:      cfg.RankingMinScore,
		Workers:       cfg.RankingWorkers,
	}, log.Named("ranking"))
	batch := dating.NewBatchRecomputer(service, repo, dating.BatchConfig{
		ChunkSize:  cfg.BatchChunkSize,
		ChunkDelay: cfg.BatchChunkDelay,
		StaleLimit: cfg.BatchStaleLimit,
	}, log.Named("batch"))
	admin := dating.NewAdminService(repo, batch)
	log.Info("matching engine ready", zap.String("model_version", matching.CurrentModelInfo().ModelVersion))

	// 8. Background workers
	if redisClient != nil {
		listener := dating.NewProfileChangeListener(redisClient, cfg.EventsChannelProfile, service, log.Named("listener"))
		go func() {
			if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("profile change listener stopped", zap.Error(err))
			}
		}()
	}

	scheduler := dating.NewScheduler(batch, service, dating.SchedulerConfig{
		RecomputeInterval: cfg.RecomputeInterval,
		AnalysisHour:      cfg.AnalysisHour,
		AnalysisLimit:     cfg.AnalysisLimit,
	}, log.Named("scheduler"))
	scheduler.Start(ctx)
	log.Info("scheduler started", zap.Duration("recompute_interval", cfg.RecomputeInterval))

	// 9. Routes
	router := mux.NewRouter()
	router.Use(loggingMiddleware(log.Named("http")))
	router.Use(corsMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	var limiter auth.Limiter
	switch {
	case cfg.ComputeRateLimit == 0:
		log.Warn("compute rate limit disabled")
	case redisClient != nil:
		limiter = auth.NewRedisLimiter(redisClient, cfg.ComputeRateLimit, cfg.ComputeRateWindow)
	default:
		limiter = auth.NewMemoryLimiter(cfg.ComputeRateLimit, cfg.ComputeRateWindow)
	}

	handler := dating.NewHandler(service, ranker, admin, log.Named("handler"))
	dating.RegisterRoutes(router, handler, hub, auth.NewMiddleware(cfg.JWTSecret), limiter)

	// 10. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
		"model":     matching.CurrentModelInfo(),
	})
}
