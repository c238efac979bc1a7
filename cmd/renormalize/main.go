// Command renormalize re-runs the normalization pipeline and validation over
// stored assessments, updating rows whose record or status changed.
// Usage: go run ./cmd/renormalize [-form-type PLS-5] [-concurrency 4]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"formscan/internal/classifier"
	"formscan/internal/config"
	"formscan/internal/normalizer"
	"formscan/internal/repository/postgres"
	"formscan/internal/service"
	"formscan/internal/validator"
)

func main() {
	formType := flag.String("form-type", "", "only renormalize assessments of this form type")
	concurrency := flag.Int("concurrency", 4, "number of records processed in parallel")
	flag.Parse()

	if err := run(*formType, *concurrency); err != nil {
		log.Fatal(err)
	}
}

func run(formType string, concurrency int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	repo := postgres.NewAssessmentRepo(db)
	svc := service.NewAssessmentService(repo,
		classifier.New(classifier.WithThreshold(cfg.Classifier.Threshold)),
		normalizer.New(),
		validator.NewEngine(validator.NewBuiltinRegistry()),
		service.ServiceConfig{KeepSourceText: cfg.Ingest.KeepSourceText},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := service.NewRenormalizeWorker(repo, svc, service.RenormalizeConfig{
		BatchSize:   cfg.Export.BatchSize,
		Concurrency: concurrency,
		FormType:    formType,
	})
	report, err := worker.Run(ctx)
	if err != nil {
		return fmt.Errorf("renormalize: %w", err)
	}
	log.Printf("renormalize complete: %d scanned, %d failed", report.Scanned, report.Failed)
	return nil
}
