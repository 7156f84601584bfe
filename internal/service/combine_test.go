package service

import (
	"testing"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func TestCombineProductsClassification(t *testing.T) {
	products := []tcgcsv.Product{
		{
			ProductID: 1,
			Name:      "Pikachu",
			ExtendedData: []tcgcsv.ExtendedData{
				{Name: "Rarity", Value: "Common"},
				{Name: "Number", Value: "25/102"},
			},
		},
		{
			ProductID: 2,
			Name:      "Booster Box",
			ExtendedData: []tcgcsv.ExtendedData{
				{Name: "Rarity", Value: "Common"},
			},
		},
		{
			ProductID: 3,
			Name:      "Elite Trainer Box",
		},
	}

	combined := CombineProducts(products, nil)
	if len(combined) != 3 {
		t.Fatalf("expected 3 combined products, got %d", len(combined))
	}

	if combined[0].Type != models.ProductTypeCard {
		t.Errorf("product with Number attribute: expected card, got %s", combined[0].Type)
	}
	if combined[1].Type != models.ProductTypeSealed {
		t.Errorf("product without Number attribute: expected sealed, got %s", combined[1].Type)
	}
	if combined[2].Type != models.ProductTypeSealed {
		t.Errorf("product without extended data: expected sealed, got %s", combined[2].Type)
	}
}

func TestCombineProductsGroupsPricesByProduct(t *testing.T) {
	products := []tcgcsv.Product{
		{ProductID: 10, Name: "A"},
		{ProductID: 11, Name: "B"},
	}
	prices := []tcgcsv.Price{
		{ProductID: 10, SubTypeName: sptr("Normal"), MarketPrice: fptr(1.5)},
		{ProductID: 10, SubTypeName: sptr("Foil"), MarketPrice: fptr(3.0)},
	}

	combined := CombineProducts(products, prices)

	if got := len(combined[0].Prices); got != 2 {
		t.Fatalf("product 10: expected 2 price variants, got %d", got)
	}
	// Feed order must be preserved.
	if *combined[0].Prices[0].SubTypeName != "Normal" || *combined[0].Prices[1].SubTypeName != "Foil" {
		t.Errorf("variant order not preserved: %v, %v", *combined[0].Prices[0].SubTypeName, *combined[0].Prices[1].SubTypeName)
	}
	if got := len(combined[1].Prices); got != 0 {
		t.Errorf("product 11: expected no price variants, got %d", got)
	}
}

func TestCombineProductsFallsBackToNameForCleanName(t *testing.T) {
	combined := CombineProducts([]tcgcsv.Product{{ProductID: 1, Name: "Raw Name"}}, nil)
	if combined[0].CleanName != "Raw Name" {
		t.Errorf("expected clean name fallback to %q, got %q", "Raw Name", combined[0].CleanName)
	}
}

func TestBuildPriceRecordsUnpricedProduct(t *testing.T) {
	group := tcgcsv.Group{GroupID: 100, CategoryID: 3, Name: "Test Set", Abbreviation: "TST"}
	combined := CombineProducts([]tcgcsv.Product{{ProductID: 7, Name: "Unpriced"}}, nil)

	records := BuildPriceRecords(combined, group, "2025-06-01")
	if len(records) != 1 {
		t.Fatalf("expected exactly 1 record for unpriced product, got %d", len(records))
	}

	rec := records[0]
	if rec.SubTypeName != nil {
		t.Errorf("expected nil sub type, got %v", *rec.SubTypeName)
	}
	for name, v := range map[string]*float64{
		"low":        rec.LowPrice,
		"mid":        rec.MidPrice,
		"high":       rec.HighPrice,
		"market":     rec.MarketPrice,
		"direct_low": rec.DirectLowPrice,
	} {
		if v != nil {
			t.Errorf("expected nil %s price, got %v", name, *v)
		}
	}
	if rec.PrevDate == nil || *rec.PrevDate != "2025-06-01" {
		t.Errorf("expected sync date stamp, got %v", rec.PrevDate)
	}
}

func TestBuildPriceRecordsOneRecordPerVariant(t *testing.T) {
	group := tcgcsv.Group{GroupID: 24073, CategoryID: 3, Name: "Scarlet & Violet", Abbreviation: "SVI"}
	products := []tcgcsv.Product{
		{ProductID: 1001, Name: "Charizard ex", ExtendedData: []tcgcsv.ExtendedData{{Name: "Number", Value: "125"}}},
		{ProductID: 1002, Name: "Sleeved Booster"},
	}
	prices := []tcgcsv.Price{
		{ProductID: 1001, SubTypeName: sptr("Normal"), MarketPrice: fptr(5.00)},
		{ProductID: 1001, SubTypeName: sptr("Holofoil"), MarketPrice: fptr(20.00)},
	}

	records := BuildPriceRecords(CombineProducts(products, prices), group, "2025-06-01")
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.ProductID != 1001 || *first.SubTypeName != "Normal" || *first.MarketPrice != 5.00 {
		t.Errorf("unexpected first record: product=%d sub=%v market=%v", first.ProductID, first.SubTypeName, first.MarketPrice)
	}
	second := records[1]
	if second.ProductID != 1001 || *second.SubTypeName != "Holofoil" || *second.MarketPrice != 20.00 {
		t.Errorf("unexpected second record: product=%d sub=%v market=%v", second.ProductID, second.SubTypeName, second.MarketPrice)
	}
	third := records[2]
	if third.ProductID != 1002 || third.SubTypeName != nil || third.MarketPrice != nil {
		t.Errorf("unexpected third record: product=%d sub=%v market=%v", third.ProductID, third.SubTypeName, third.MarketPrice)
	}

	// Group metadata is stamped on every record.
	for i, rec := range records {
		if rec.GroupID == nil || *rec.GroupID != 24073 {
			t.Errorf("record %d: missing group id", i)
		}
		if rec.SetName == nil || *rec.SetName != "Scarlet & Violet" {
			t.Errorf("record %d: missing set name", i)
		}
	}
	if records[0].Type != models.ProductTypeCard {
		t.Errorf("expected card classification for product 1001, got %s", records[0].Type)
	}
	if records[2].Type != models.ProductTypeSealed {
		t.Errorf("expected sealed classification for product 1002, got %s", records[2].Type)
	}
}
