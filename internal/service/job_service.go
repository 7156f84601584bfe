package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// staleAfter is the window after which a completed job becomes eligible
// for another sync run.
const staleAfter = 24 * time.Hour

// JobStore claims and transitions sync jobs.
type JobStore interface {
	ClaimBatch(staleAfter time.Duration, limit int) ([]models.SyncJob, error)
	MarkCompleted(id int) error
}

// JobResult is the per-job entry of a batch run report.
type JobResult struct {
	JobID   int    `json:"jobId"`
	GroupID int    `json:"groupId"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JobRunReport aggregates one pending-batch run.
type JobRunReport struct {
	Message   string      `json:"message,omitempty"`
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []JobResult `json:"results"`
}

// JobService processes pending sync jobs in batches. Jobs are claimed
// atomically (select-and-mark in one statement), then synced sequentially
// with the same pacing as bulk sync. A failed job is recorded and left in
// processing state; the staleness window makes it eligible again after 24
// hours. Only a failure of the claim query itself aborts a batch.
type JobService struct {
	jobs      JobStore
	syncSvc   *SyncService
	batchSize int
	limiter   *rate.Limiter
}

// NewJobService constructs a JobService.
func NewJobService(jobs JobStore, syncSvc *SyncService, batchSize int, delay time.Duration) *JobService {
	if batchSize <= 0 {
		batchSize = 50
	}
	if delay <= 0 {
		delay = time.Second
	}
	return &JobService{
		jobs:      jobs,
		syncSvc:   syncSvc,
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// ProcessPending claims one batch of eligible jobs and syncs each group.
func (s *JobService) ProcessPending(ctx context.Context) (*JobRunReport, error) {
	jobs, err := s.jobs.ClaimBatch(staleAfter, s.batchSize)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		log.Info().Msg("No pending jobs found")
		return &JobRunReport{Message: "No pending jobs found"}, nil
	}

	log.Info().Int("jobs", len(jobs)).Msg("Processing sync job batch")

	report := &JobRunReport{Results: make([]JobResult, 0, len(jobs))}
	for _, job := range jobs {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		result := JobResult{JobID: job.ID, GroupID: job.GroupID, Name: job.Name}

		_, syncErr := s.syncSvc.SyncGroup(ctx, tcgcsv.Group{
			GroupID:      job.GroupID,
			CategoryID:   job.CategoryID,
			Name:         job.Name,
			Abbreviation: job.Abbreviation,
		})
		if syncErr != nil {
			log.Error().
				Err(syncErr).
				Int("job_id", job.ID).
				Int("group_id", job.GroupID).
				Str("stage", "job_sync").
				Msg("Sync job failed")
			result.Error = syncErr.Error()
			report.Failed++
		} else if err := s.jobs.MarkCompleted(job.ID); err != nil {
			log.Error().
				Err(err).
				Int("job_id", job.ID).
				Str("stage", "job_complete").
				Msg("Failed to mark job completed")
			result.Error = err.Error()
			report.Failed++
		} else {
			result.Success = true
			report.Succeeded++
		}

		report.Results = append(report.Results, result)
		report.Processed++
	}

	log.Info().
		Int("processed", report.Processed).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("Sync job batch completed")
	return report, nil
}
