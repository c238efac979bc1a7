package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"formscan/internal/domain"
	"formscan/internal/port"
)

// RenormalizeConfig holds settings for the renormalize worker.
type RenormalizeConfig struct {
	BatchSize   int
	Concurrency int
	FormType    string
}

// RenormalizeReport summarises one renormalize run.
type RenormalizeReport struct {
	Scanned int64
	Failed  int64
}

// RenormalizeWorker pages through stored assessments and re-runs the
// pipeline over each one.
type RenormalizeWorker struct {
	repo    port.AssessmentRepository
	service AssessmentService
	cfg     RenormalizeConfig
}

// NewRenormalizeWorker creates a new RenormalizeWorker.
func NewRenormalizeWorker(repo port.AssessmentRepository, svc AssessmentService, cfg RenormalizeConfig) *RenormalizeWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &RenormalizeWorker{repo: repo, service: svc, cfg: cfg}
}

// Run processes every matching assessment and blocks until in-flight work
// finishes. Cancelling ctx stops dispatch after the current batch.
func (w *RenormalizeWorker) Run(ctx context.Context) (RenormalizeReport, error) {
	var (
		wg      sync.WaitGroup
		scanned atomic.Int64
		failed  atomic.Int64
	)
	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("renormalizeWorker: started (batch=%d, concurrency=%d, formType=%q)",
		w.cfg.BatchSize, w.cfg.Concurrency, w.cfg.FormType)

	filter := domain.AssessmentFilter{FormType: w.cfg.FormType, Limit: w.cfg.BatchSize}
	var runErr error
	for ctx.Err() == nil {
		batch, _, err := w.repo.List(ctx, filter)
		if err != nil {
			runErr = fmt.Errorf("listing assessments at offset %d: %w", filter.Offset, err)
			break
		}
		for i := range batch {
			a := batch[i]
			sem <- struct{}{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				scanned.Add(1)
				if err := w.service.Renormalize(ctx, &a); err != nil {
					failed.Add(1)
					log.Printf("renormalizeWorker: assessment %s: %v", a.ID, err)
				}
			}()
		}
		if len(batch) < filter.Limit {
			break
		}
		filter.Offset += len(batch)
	}

	wg.Wait()
	report := RenormalizeReport{Scanned: scanned.Load(), Failed: failed.Load()}
	log.Printf("renormalizeWorker: done (scanned=%d, failed=%d)", report.Scanned, report.Failed)
	if runErr == nil {
		runErr = ctx.Err()
	}
	return report, runErr
}
