package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

// fakeFeed implements PriceFeed with canned responses per group.
type fakeFeed struct {
	groups      []tcgcsv.Group
	groupsErr   error
	products    map[int][]tcgcsv.Product
	prices      map[int][]tcgcsv.Price
	productsErr map[int]error
	pricesErr   map[int]error
}

func (f *fakeFeed) ListGroups(ctx context.Context) ([]tcgcsv.Group, error) {
	return f.groups, f.groupsErr
}

func (f *fakeFeed) ListProducts(ctx context.Context, groupID int) ([]tcgcsv.Product, error) {
	if err := f.productsErr[groupID]; err != nil {
		return nil, err
	}
	return f.products[groupID], nil
}

func (f *fakeFeed) ListPrices(ctx context.Context, groupID int) ([]tcgcsv.Price, error) {
	if err := f.pricesErr[groupID]; err != nil {
		return nil, err
	}
	return f.prices[groupID], nil
}

// fakePriceStore records upserts and can fail at a given call index.
type fakePriceStore struct {
	records []models.PriceHistory
	failAt  int // 0-based call index, -1 disables
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{failAt: -1}
}

func (s *fakePriceStore) Upsert(rec *models.PriceHistory) error {
	if s.failAt >= 0 && len(s.records) == s.failAt {
		return errors.New("connection reset")
	}
	s.records = append(s.records, *rec)
	return nil
}

type fakeGroupStore struct {
	groups map[int]*models.Group
}

func (s *fakeGroupStore) GetByGroupID(groupID int) (*models.Group, error) {
	g, ok := s.groups[groupID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return g, nil
}

func testFeed() *fakeFeed {
	return &fakeFeed{
		products: map[int][]tcgcsv.Product{
			24073: {
				{ProductID: 1001, Name: "Charizard ex", ExtendedData: []tcgcsv.ExtendedData{{Name: "Number", Value: "125"}}},
				{ProductID: 1002, Name: "Sleeved Booster"},
			},
		},
		prices: map[int][]tcgcsv.Price{
			24073: {
				{ProductID: 1001, SubTypeName: sptr("Normal"), MarketPrice: fptr(5.00)},
				{ProductID: 1001, SubTypeName: sptr("Holofoil"), MarketPrice: fptr(20.00)},
			},
		},
		productsErr: map[int]error{},
		pricesErr:   map[int]error{},
	}
}

func TestSyncGroupPersistsAllRecords(t *testing.T) {
	feed := testFeed()
	store := newFakePriceStore()
	svc := NewSyncService(feed, store, &fakeGroupStore{}, nil)

	summary, err := svc.SyncGroup(context.Background(), tcgcsv.Group{GroupID: 24073, CategoryID: 3, Name: "Scarlet & Violet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Products != 2 || summary.Records != 3 {
		t.Errorf("expected 2 products / 3 records, got %d / %d", summary.Products, summary.Records)
	}
	if len(store.records) != 3 {
		t.Errorf("expected 3 stored records, got %d", len(store.records))
	}
}

func TestSyncGroupEmptyFeed(t *testing.T) {
	feed := &fakeFeed{productsErr: map[int]error{}, pricesErr: map[int]error{}}
	store := newFakePriceStore()
	svc := NewSyncService(feed, store, &fakeGroupStore{}, nil)

	summary, err := svc.SyncGroup(context.Background(), tcgcsv.Group{GroupID: 999, Name: "Empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Message != "No data found for group" {
		t.Errorf("expected empty-group message, got %q", summary.Message)
	}
	if len(store.records) != 0 {
		t.Errorf("expected no stored records, got %d", len(store.records))
	}
}

func TestSyncGroupFeedFailure(t *testing.T) {
	feed := testFeed()
	feed.productsErr[24073] = fmt.Errorf("%w: status 503", utils.ErrUpstreamUnavailable)
	svc := NewSyncService(feed, newFakePriceStore(), &fakeGroupStore{}, nil)

	_, err := svc.SyncGroup(context.Background(), tcgcsv.Group{GroupID: 24073})
	if !errors.Is(err, utils.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSyncGroupAbortsOnUpsertFailure(t *testing.T) {
	feed := testFeed()
	store := newFakePriceStore()
	store.failAt = 1
	svc := NewSyncService(feed, store, &fakeGroupStore{}, nil)

	_, err := svc.SyncGroup(context.Background(), tcgcsv.Group{GroupID: 24073})
	if err == nil {
		t.Fatal("expected error from upsert failure")
	}
	// The first record was committed before the failure.
	if len(store.records) != 1 {
		t.Errorf("expected 1 committed record, got %d", len(store.records))
	}
}

func TestSyncGroupByID(t *testing.T) {
	feed := testFeed()
	groupStore := &fakeGroupStore{groups: map[int]*models.Group{
		24073: {GroupID: 24073, CategoryID: 3, Name: "Scarlet & Violet", PublishedOn: time.Now()},
	}}
	svc := NewSyncService(feed, newFakePriceStore(), groupStore, nil)

	t.Run("invalid id", func(t *testing.T) {
		_, err := svc.SyncGroupByID(context.Background(), 0)
		if !errors.Is(err, utils.ErrInvalidInput) {
			t.Errorf("expected invalid input error, got %v", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.SyncGroupByID(context.Background(), 55555)
		if !errors.Is(err, utils.ErrGroupNotFound) {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("known group", func(t *testing.T) {
		summary, err := svc.SyncGroupByID(context.Background(), 24073)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.GroupID != 24073 || summary.Records != 3 {
			t.Errorf("unexpected summary: %+v", summary)
		}
	})
}
