package models

import "time"

// JobStatus enumerates sync job states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
)

// SyncJob tracks the sync lifecycle of one card group. A job becomes
// eligible again once completed_at is null or older than the staleness
// window, regardless of its last recorded status.
type SyncJob struct {
	ID           int        `db:"id" json:"id"`
	CategoryID   int        `db:"category_id" json:"categoryId"`
	GroupID      int        `db:"group_id" json:"groupId"`
	Name         string     `db:"name" json:"name"`
	Abbreviation string     `db:"abbreviation" json:"abbreviation"`
	PublishedOn  time.Time  `db:"published_on" json:"publishedOn"`
	Status       JobStatus  `db:"status" json:"status"`
	StartedAt    *time.Time `db:"started_at" json:"startedAt"`
	CompletedAt  *time.Time `db:"completed_at" json:"completedAt"`
	CreatedAt    time.Time  `db:"created_at" json:"-"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
