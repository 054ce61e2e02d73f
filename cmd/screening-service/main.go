package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glucora-health/screening/pkg/artifact"
	"github.com/glucora-health/screening/pkg/common/config"
	"github.com/glucora-health/screening/pkg/common/database"
	"github.com/glucora-health/screening/pkg/common/logger"
	"github.com/glucora-health/screening/pkg/events"
	"github.com/glucora-health/screening/pkg/risk"
	"github.com/glucora-health/screening/pkg/serving"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init()
	cfg := config.Load()

	store := artifact.NewStore(cfg.PreprocessorPath, cfg.ModelPath)

	// Warm the artifact cache. A failure here is not fatal: the service stays
	// up and reports "model not loaded" until an operator fixes the artifacts.
	if _, _, err := store.Load(); err != nil {
		logger.Log.WithError(err).Error("Model artifacts not loaded; assessments will be rejected until reload")
	} else if info, ok := store.Describe(); ok {
		logger.Log.WithFields(map[string]interface{}{
			"preprocessor": fmt.Sprintf("%s/v%d", info.PreprocessorKind, info.PreprocessorSchema),
			"classifier":   fmt.Sprintf("%s/v%d", info.ClassifierKind, info.ClassifierSchema),
		}).Info("Screening model ready")
	}

	thresholds, err := risk.LoadThresholds(cfg.RiskThresholdsPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load risk thresholds")
	}

	var repo *serving.Repository
	if cfg.AuditLogEnabled {
		db, err := database.GetPostgres()
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to connect to database")
		}
		repo = serving.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate assessment log tables")
		}
	}

	var cache *serving.Cache
	if cfg.CacheEnabled {
		cache = serving.NewCache(database.GetRedis(), cfg.AssessmentCacheTTL)
	}

	var producer *events.Producer
	if cfg.EventsEnabled {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	handler := serving.NewHandler(store, thresholds, repo, cache, producer)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	handler.Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Screening Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Screening Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Log.WithError(err).Error("Failed to close event producer")
		}
	}
	if cfg.CacheEnabled {
		if err := database.CloseRedis(); err != nil {
			logger.Log.WithError(err).Error("Failed to close Redis")
		}
	}
	if cfg.AuditLogEnabled {
		if err := database.ClosePostgres(); err != nil {
			logger.Log.WithError(err).Error("Failed to close PostgreSQL")
		}
	}

	logger.Log.Info("Screening Service stopped")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
