package models

import "time"

// Group represents a card set (group) as published by the upstream feed.
// Rows are written only during sync; the feed is the source of truth.
type Group struct {
	ID             int       `db:"id" json:"id"`
	GroupID        int       `db:"group_id" json:"groupId"`
	CategoryID     int       `db:"category_id" json:"categoryId"`
	Name           string    `db:"name" json:"name"`
	Abbreviation   string    `db:"abbreviation" json:"abbreviation"`
	IsSupplemental bool      `db:"is_supplemental" json:"isSupplemental"`
	PublishedOn    time.Time `db:"published_on" json:"publishedOn"`
	ModifiedOn     time.Time `db:"modified_on" json:"modifiedOn"`
	CreatedAt      time.Time `db:"created_at" json:"-"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
