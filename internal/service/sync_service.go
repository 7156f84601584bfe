package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/cache"
	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// PriceFeed is the upstream price source consumed by the sync pipeline.
// Implemented by *tcgcsv.Client; test doubles implement it directly.
type PriceFeed interface {
	ListGroups(ctx context.Context) ([]tcgcsv.Group, error)
	ListProducts(ctx context.Context, groupID int) ([]tcgcsv.Product, error)
	ListPrices(ctx context.Context, groupID int) ([]tcgcsv.Price, error)
}

// PriceStore is the persistence boundary for price snapshots.
type PriceStore interface {
	Upsert(rec *models.PriceHistory) error
}

// GroupStore resolves stored group metadata.
type GroupStore interface {
	GetByGroupID(groupID int) (*models.Group, error)
}

// GroupSyncSummary reports the outcome of syncing one group.
type GroupSyncSummary struct {
	GroupID  int    `json:"groupId"`
	Name     string `json:"name"`
	Products int    `json:"products"`
	Records  int    `json:"records"`
	Message  string `json:"message,omitempty"`
}

// SyncService runs the per-group sync pipeline: fetch products and prices
// from the feed, combine and flatten them, and upsert each snapshot row.
type SyncService struct {
	feed       PriceFeed
	priceStore PriceStore
	groupStore GroupStore
	priceCache *cache.PriceCache
}

// NewSyncService constructs a SyncService. priceCache may be nil when no
// read-side cache is configured.
func NewSyncService(feed PriceFeed, priceStore PriceStore, groupStore GroupStore, priceCache *cache.PriceCache) *SyncService {
	return &SyncService{
		feed:       feed,
		priceStore: priceStore,
		groupStore: groupStore,
		priceCache: priceCache,
	}
}

// SyncGroupByID resolves a group from storage and syncs it. Unknown groups
// map to ErrGroupNotFound so the handler can answer 404.
func (s *SyncService) SyncGroupByID(ctx context.Context, groupID int) (*GroupSyncSummary, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: missing or malformed group id", utils.ErrInvalidInput)
	}

	stored, err := s.groupStore.GetByGroupID(groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: group %d", utils.ErrGroupNotFound, groupID)
		}
		return nil, fmt.Errorf("failed to load group %d: %w", groupID, err)
	}

	return s.SyncGroup(ctx, tcgcsv.Group{
		GroupID:      stored.GroupID,
		CategoryID:   stored.CategoryID,
		Name:         stored.Name,
		Abbreviation: stored.Abbreviation,
	})
}

// SyncGroup fetches, combines and persists the price data for one group.
// Records are upserted independently; the first persistence failure aborts
// the remainder, leaving earlier records committed. The next scheduled run
// picks the group up again.
func (s *SyncService) SyncGroup(ctx context.Context, group tcgcsv.Group) (*GroupSyncSummary, error) {
	log.Info().
		Int("group_id", group.GroupID).
		Str("name", group.Name).
		Msg("Syncing price data for group")

	products, err := s.feed.ListProducts(ctx, group.GroupID)
	if err != nil {
		return nil, fmt.Errorf("fetching products for group %d: %w", group.GroupID, err)
	}

	prices, err := s.feed.ListPrices(ctx, group.GroupID)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for group %d: %w", group.GroupID, err)
	}

	summary := &GroupSyncSummary{GroupID: group.GroupID, Name: group.Name}
	if len(products) == 0 {
		log.Info().Int("group_id", group.GroupID).Msg("No data found for group")
		summary.Message = "No data found for group"
		return summary, nil
	}

	combined := CombineProducts(products, prices)
	syncDate := time.Now().UTC().Format("2006-01-02")
	records := BuildPriceRecords(combined, group, syncDate)

	for i := range records {
		if err := s.priceStore.Upsert(&records[i]); err != nil {
			log.Error().
				Err(err).
				Int("group_id", group.GroupID).
				Int("product_id", records[i].ProductID).
				Str("stage", "upsert").
				Msg("Failed to upsert price record")
			return nil, fmt.Errorf("upserting product %d: %w", records[i].ProductID, err)
		}
		summary.Records++
	}
	summary.Products = len(combined)

	if s.priceCache != nil {
		if err := s.priceCache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Int("group_id", group.GroupID).Msg("Failed to invalidate price cache")
		}
	}

	log.Info().
		Int("group_id", group.GroupID).
		Int("products", summary.Products).
		Int("records", summary.Records).
		Msg("Group sync completed")
	return summary, nil
}
