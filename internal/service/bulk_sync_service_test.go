package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// fakeRegistry implements GroupWriter and JobSeeder.
type fakeRegistry struct {
	upserted []models.Group
	seeded   []int
}

func (r *fakeRegistry) Upsert(group *models.Group) error {
	r.upserted = append(r.upserted, *group)
	return nil
}

func (r *fakeRegistry) EnsureJob(group *models.Group) error {
	r.seeded = append(r.seeded, group.GroupID)
	return nil
}

func bulkTestFeed() *fakeFeed {
	feed := testFeed()
	feed.groups = []tcgcsv.Group{
		{GroupID: 24073, CategoryID: 3, Name: "Scarlet & Violet", PublishedOn: "2023-03-31T00:00:00"},
		{GroupID: 604, CategoryID: 3, Name: "Base Set", PublishedOn: "1999-01-09T00:00:00"},
	}
	feed.products[604] = []tcgcsv.Product{{ProductID: 42, Name: "Alakazam"}}
	feed.prices[604] = []tcgcsv.Price{{ProductID: 42, SubTypeName: sptr("Unlimited"), MarketPrice: fptr(30.0)}}
	return feed
}

func TestSyncAllProcessesEveryGroup(t *testing.T) {
	feed := bulkTestFeed()
	store := newFakePriceStore()
	registry := &fakeRegistry{}
	syncSvc := NewSyncService(feed, store, &fakeGroupStore{}, nil)
	svc := NewBulkSyncService(feed, syncSvc, registry, registry, time.Millisecond, time.Time{})

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Processed != 2 || report.Succeeded != 2 || report.Failed != 0 || report.Skipped != 0 {
		t.Errorf("unexpected counts: %+v", report)
	}
	if len(registry.upserted) != 2 || len(registry.seeded) != 2 {
		t.Errorf("expected 2 groups registered and seeded, got %d / %d", len(registry.upserted), len(registry.seeded))
	}
	// 3 records for group 24073 plus 1 for group 604.
	if len(store.records) != 4 {
		t.Errorf("expected 4 stored records, got %d", len(store.records))
	}
}

func TestSyncAllContinuesPastGroupFailure(t *testing.T) {
	feed := bulkTestFeed()
	feed.productsErr[24073] = fmt.Errorf("%w: status 503", utils.ErrUpstreamUnavailable)
	registry := &fakeRegistry{}
	syncSvc := NewSyncService(feed, newFakePriceStore(), &fakeGroupStore{}, nil)
	svc := NewBulkSyncService(feed, syncSvc, registry, registry, time.Millisecond, time.Time{})

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("expected run to continue, got %v", err)
	}

	if report.Processed != 2 || report.Succeeded != 1 || report.Failed != 1 {
		t.Errorf("unexpected counts: %+v", report)
	}
	var failed *GroupResult
	for i := range report.Results {
		if report.Results[i].GroupID == 24073 {
			failed = &report.Results[i]
		}
	}
	if failed == nil || failed.Success || failed.Error == "" {
		t.Errorf("expected recorded failure for group 24073, got %+v", failed)
	}
}

func TestSyncAllCutoffSkipsOldGroups(t *testing.T) {
	feed := bulkTestFeed()
	registry := &fakeRegistry{}
	syncSvc := NewSyncService(feed, newFakePriceStore(), &fakeGroupStore{}, nil)
	cutoff := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewBulkSyncService(feed, syncSvc, registry, registry, time.Millisecond, cutoff)

	report, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Skipped != 1 || report.Processed != 1 {
		t.Errorf("expected 1 skipped / 1 processed, got %d / %d", report.Skipped, report.Processed)
	}
	// Skipped groups still get registered so jobs exist when the cutoff moves.
	if len(registry.upserted) != 2 {
		t.Errorf("expected both groups registered, got %d", len(registry.upserted))
	}
}

func TestSyncAllAbortsWhenGroupListFails(t *testing.T) {
	feed := bulkTestFeed()
	feed.groupsErr = errors.New("connection refused")
	registry := &fakeRegistry{}
	syncSvc := NewSyncService(feed, newFakePriceStore(), &fakeGroupStore{}, nil)
	svc := NewBulkSyncService(feed, syncSvc, registry, registry, time.Millisecond, time.Time{})

	if _, err := svc.SyncAll(context.Background()); err == nil {
		t.Fatal("expected error when the group list fetch fails")
	}
}
