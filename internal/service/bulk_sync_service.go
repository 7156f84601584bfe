package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// GroupWriter persists fetched group metadata.
type GroupWriter interface {
	Upsert(group *models.Group) error
}

// JobSeeder creates missing sync job rows for newly discovered groups.
type JobSeeder interface {
	EnsureJob(group *models.Group) error
}

// GroupResult is the per-group entry of a bulk sync report.
type GroupResult struct {
	GroupID int               `json:"groupId"`
	Name    string            `json:"name"`
	Success bool              `json:"success"`
	Result  *GroupSyncSummary `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// BulkSyncReport aggregates a full bulk sync run.
type BulkSyncReport struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Elapsed   time.Duration `json:"elapsedMs"`
	Results   []GroupResult `json:"results"`
}

// BulkSyncService iterates all feed groups and syncs them sequentially.
// The upstream feed is rate limited, so groups are never synced
// concurrently; a limiter paces consecutive calls at one per configured
// delay. A single group's failure is recorded and the run continues.
type BulkSyncService struct {
	feed       PriceFeed
	syncSvc    *SyncService
	groups     GroupWriter
	jobs       JobSeeder
	limiter    *rate.Limiter
	cutoffDate time.Time
}

// NewBulkSyncService constructs a BulkSyncService. delay is the pause
// between consecutive per-group syncs; cutoffDate (zero to disable) skips
// groups published before it.
func NewBulkSyncService(
	feed PriceFeed,
	syncSvc *SyncService,
	groups GroupWriter,
	jobs JobSeeder,
	delay time.Duration,
	cutoffDate time.Time,
) *BulkSyncService {
	if delay <= 0 {
		delay = time.Second
	}
	return &BulkSyncService{
		feed:       feed,
		syncSvc:    syncSvc,
		groups:     groups,
		jobs:       jobs,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		cutoffDate: cutoffDate,
	}
}

// SyncAll fetches the group list, refreshes stored group metadata, seeds
// missing sync jobs, and syncs every group in feed order. Only a failure
// of the initial group fetch aborts the run.
func (s *BulkSyncService) SyncAll(ctx context.Context) (*BulkSyncReport, error) {
	start := time.Now()

	feedGroups, err := s.feed.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching group list: %w", err)
	}

	log.Info().Int("groups", len(feedGroups)).Msg("Starting bulk price sync")

	report := &BulkSyncReport{Results: make([]GroupResult, 0, len(feedGroups))}

	for _, group := range feedGroups {
		s.registerGroup(group)

		if !s.cutoffDate.IsZero() && group.PublishedTime().Before(s.cutoffDate) {
			report.Skipped++
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			// Context canceled mid-run; report what was done so far.
			report.Elapsed = time.Since(start)
			return report, err
		}

		summary, err := s.syncSvc.SyncGroup(ctx, group)
		result := GroupResult{GroupID: group.GroupID, Name: group.Name}
		if err != nil {
			log.Error().
				Err(err).
				Int("group_id", group.GroupID).
				Str("name", group.Name).
				Str("stage", "group_sync").
				Msg("Group sync failed")
			result.Error = err.Error()
			report.Failed++
		} else {
			result.Success = true
			result.Result = summary
			report.Succeeded++
		}
		report.Results = append(report.Results, result)
		report.Processed++
	}

	report.Elapsed = time.Since(start)
	log.Info().
		Int("processed", report.Processed).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Dur("duration", report.Elapsed).
		Msg("Bulk price sync completed")
	return report, nil
}

// registerGroup refreshes the stored group row and seeds its sync job.
// Failures here are logged and do not block the sync itself.
func (s *BulkSyncService) registerGroup(group tcgcsv.Group) {
	stored := &models.Group{
		GroupID:        group.GroupID,
		CategoryID:     group.CategoryID,
		Name:           group.Name,
		Abbreviation:   group.Abbreviation,
		IsSupplemental: group.IsSupplemental,
		PublishedOn:    group.PublishedTime(),
		ModifiedOn:     group.PublishedTime(),
	}
	if t := parseFeedTime(group.ModifiedOn); !t.IsZero() {
		stored.ModifiedOn = t
	}

	if err := s.groups.Upsert(stored); err != nil {
		log.Warn().Err(err).Int("group_id", group.GroupID).Msg("Failed to upsert group")
		return
	}
	if err := s.jobs.EnsureJob(stored); err != nil {
		log.Warn().Err(err).Int("group_id", group.GroupID).Msg("Failed to seed sync job")
	}
}

func parseFeedTime(raw string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
