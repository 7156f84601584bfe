package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/service"
)

// ScheduleWorker runs the full bulk sync on a cron schedule, typically once
// per day after the upstream feed publishes fresh prices.
type ScheduleWorker struct {
	bulkSvc  *service.BulkSyncService
	cronSpec string
}

// NewScheduleWorker constructs a ScheduleWorker.
func NewScheduleWorker(bulkSvc *service.BulkSyncService, cronSpec string) *ScheduleWorker {
	return &ScheduleWorker{bulkSvc: bulkSvc, cronSpec: cronSpec}
}

// Start registers the cron entry and blocks until the context is canceled.
func (w *ScheduleWorker) Start(ctx context.Context) {
	log.Info().Str("cron", w.cronSpec).Msg("Starting scheduled sync worker")

	c := cron.New()
	_, err := c.AddFunc(w.cronSpec, func() {
		w.run(ctx)
	})
	if err != nil {
		log.Error().Err(err).Str("cron", w.cronSpec).Msg("Invalid sync cron spec, scheduled sync disabled")
		return
	}

	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	log.Info().Msg("Scheduled sync worker stopped")
}

func (w *ScheduleWorker) run(ctx context.Context) {
	report, err := w.bulkSvc.SyncAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled bulk sync failed")
		return
	}

	log.Info().
		Int("processed", report.Processed).
		Int("failed", report.Failed).
		Dur("duration", report.Elapsed).
		Msg("Scheduled bulk sync completed")
}
