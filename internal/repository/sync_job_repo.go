package repository

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
)

// SyncJobRepository handles data access for sync_jobs. One row exists per
// card group; rows are seeded during bulk sync and never deleted here.
type SyncJobRepository struct {
	db *sqlx.DB
}

// NewSyncJobRepository creates a new SyncJobRepository.
func NewSyncJobRepository(db *sqlx.DB) *SyncJobRepository {
	return &SyncJobRepository{db: db}
}

// ClaimBatch atomically selects up to limit eligible jobs and marks them
// processing in a single statement. A job is eligible when it has never
// completed or last completed more than staleAfter ago. SKIP LOCKED keeps
// concurrent scheduler invocations from double-claiming a job.
func (r *SyncJobRepository) ClaimBatch(staleAfter time.Duration, limit int) ([]models.SyncJob, error) {
	const q = `
        UPDATE sync_jobs SET
            status = 'processing',
            started_at = NOW(),
            updated_at = NOW()
        WHERE id IN (
            SELECT id FROM sync_jobs
            WHERE completed_at IS NULL
               OR completed_at < NOW() - make_interval(secs => $1)
            ORDER BY completed_at ASC NULLS FIRST
            LIMIT $2
            FOR UPDATE SKIP LOCKED
        )
        RETURNING *`

	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var jobs []models.SyncJob
	if err := stmt.Select(&jobs, staleAfter.Seconds(), limit); err != nil {
		return nil, err
	}
	return jobs, nil
}

// MarkCompleted transitions a job to completed and stamps completed_at.
func (r *SyncJobRepository) MarkCompleted(id int) error {
	const q = `UPDATE sync_jobs SET status = 'completed', completed_at = NOW(), updated_at = NOW() WHERE id = $1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(id)
	return err
}

// EnsureJob seeds a pending job row for a group if none exists yet.
// Existing rows keep their status and timestamps.
func (r *SyncJobRepository) EnsureJob(group *models.Group) error {
	const q = `
        INSERT INTO sync_jobs (category_id, group_id, name, abbreviation, published_on, status)
        VALUES ($1, $2, $3, $4, $5, 'pending')
        ON CONFLICT (group_id) DO NOTHING`

	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(group.CategoryID, group.GroupID, group.Name, group.Abbreviation, group.PublishedOn)
	return err
}

// GetByGroupID returns the job row for a group.
func (r *SyncJobRepository) GetByGroupID(groupID int) (*models.SyncJob, error) {
	const q = `SELECT * FROM sync_jobs WHERE group_id = $1 LIMIT 1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var job models.SyncJob
	if err := stmt.Get(&job, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &job, nil
}
