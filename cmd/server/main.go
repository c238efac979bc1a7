package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"formscan/internal/classifier"
	"formscan/internal/config"
	"formscan/internal/handler"
	"formscan/internal/normalizer"
	"formscan/internal/repository/postgres"
	"formscan/internal/router"
	"formscan/internal/service"
	"formscan/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	assessmentRepo := postgres.NewAssessmentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize pipeline
	formClassifier := classifier.New(classifier.WithThreshold(cfg.Classifier.Threshold))
	recordNormalizer := normalizer.New()
	validationEngine := validator.NewEngine(validator.NewBuiltinRegistry())

	// Initialize services
	assessmentSvc := service.NewAssessmentService(assessmentRepo, formClassifier, recordNormalizer, validationEngine,
		service.ServiceConfig{
			KeepSourceText:  cfg.Ingest.KeepSourceText,
			ExportMaxRows:   cfg.Export.MaxRows,
			ExportBatchSize: cfg.Export.BatchSize,
		})
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	assessmentH := handler.NewAssessmentHandler(assessmentSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(router.Options{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		MaxPayloadBytes: cfg.Ingest.MaxPayloadBytes,
	}, assessmentH, statsH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (env=%s, classifier threshold=%.2f)",
			cfg.Server.Port, cfg.Server.Environment, formClassifier.Threshold())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Printf("Server stopped")
	return nil
}
