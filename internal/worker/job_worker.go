package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/service"
)

// JobWorker periodically claims and processes a batch of pending sync jobs.
type JobWorker struct {
	jobSvc   *service.JobService
	interval time.Duration
}

// NewJobWorker constructs a JobWorker.
func NewJobWorker(jobSvc *service.JobService, interval time.Duration) *JobWorker {
	return &JobWorker{jobSvc: jobSvc, interval: interval}
}

// Start begins the periodic job loop and listens for context cancellation.
func (w *JobWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting sync job worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Sync job worker stopped")
			return
		}
	}
}

func (w *JobWorker) run(ctx context.Context) {
	start := time.Now()
	report, err := w.jobSvc.ProcessPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process job batch")
		return
	}
	if report.Processed == 0 {
		return
	}

	log.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Dur("duration", time.Since(start)).
		Msg("Job batch run completed")
}
