package models

import "time"

// ProductType enumerates how a synced product is classified.
type ProductType string

const (
	ProductTypeCard   ProductType = "card"
	ProductTypeSealed ProductType = "sealed"
)

// PriceHistory is the persisted price snapshot for one (product, sub-type)
// pair. It is an in-place temporal model: each sync shifts the current
// prices into the prev_* columns and recomputes the diff_* deltas, so the
// table always holds exactly one row per product variant.
type PriceHistory struct {
	ID           int         `db:"id" json:"id"`
	CategoryID   *int        `db:"category_id" json:"categoryId"`
	GroupID      *int        `db:"group_id" json:"groupId"`
	SetName      *string     `db:"set_name" json:"setName"`
	Abbreviation *string     `db:"abbreviation" json:"abbreviation"`
	ProductID    int         `db:"product_id" json:"productId"`
	Name         string      `db:"name" json:"name"`
	CleanName    string      `db:"clean_name" json:"cleanName"`
	ImageURL     string      `db:"image_url" json:"imageUrl"`
	URL          string      `db:"url" json:"url"`
	Type         ProductType `db:"type" json:"type"`
	SubTypeName  *string     `db:"sub_type_name" json:"subTypeName"`

	LowPrice       *float64 `db:"low_price" json:"lowPrice"`
	MidPrice       *float64 `db:"mid_price" json:"midPrice"`
	HighPrice      *float64 `db:"high_price" json:"highPrice"`
	MarketPrice    *float64 `db:"market_price" json:"marketPrice"`
	DirectLowPrice *float64 `db:"direct_low_price" json:"directLowPrice"`

	PrevLowPrice       *float64 `db:"prev_low_price" json:"prevLowPrice"`
	PrevMidPrice       *float64 `db:"prev_mid_price" json:"prevMidPrice"`
	PrevHighPrice      *float64 `db:"prev_high_price" json:"prevHighPrice"`
	PrevMarketPrice    *float64 `db:"prev_market_price" json:"prevMarketPrice"`
	PrevDirectLowPrice *float64 `db:"prev_direct_low_price" json:"prevDirectLowPrice"`

	DiffLowPrice       *float64 `db:"diff_low_price" json:"diffLowPrice"`
	DiffMidPrice       *float64 `db:"diff_mid_price" json:"diffMidPrice"`
	DiffHighPrice      *float64 `db:"diff_high_price" json:"diffHighPrice"`
	DiffMarketPrice    *float64 `db:"diff_market_price" json:"diffMarketPrice"`
	DiffDirectLowPrice *float64 `db:"diff_direct_low_price" json:"diffDirectLowPrice"`

	// PrevDate is the date of the sync that produced the prev_* snapshot,
	// as a YYYY-MM-DD string. On first insert it equals the sync date.
	PrevDate  *string   `db:"prev_date" json:"prevDate"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
