package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
)

// GroupRepository handles data access for card_groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Upsert inserts or refreshes a group by its feed group_id.
func (r *GroupRepository) Upsert(group *models.Group) error {
	const q = `
        INSERT INTO card_groups (group_id, category_id, name, abbreviation, is_supplemental, published_on, modified_on)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (group_id) DO UPDATE SET
            category_id     = EXCLUDED.category_id,
            name            = EXCLUDED.name,
            abbreviation    = EXCLUDED.abbreviation,
            is_supplemental = EXCLUDED.is_supplemental,
            published_on    = EXCLUDED.published_on,
            modified_on     = EXCLUDED.modified_on,
            updated_at      = NOW()`

	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(
		group.GroupID,
		group.CategoryID,
		group.Name,
		group.Abbreviation,
		group.IsSupplemental,
		group.PublishedOn,
		group.ModifiedOn,
	)
	return err
}

// List returns all groups, newest published first. Pass categoryID = 0 for
// no category filter.
func (r *GroupRepository) List(categoryID int) ([]models.Group, error) {
	var groups []models.Group
	if categoryID > 0 {
		const q = `SELECT * FROM card_groups WHERE category_id = $1 ORDER BY published_on DESC`
		if err := r.db.Select(&groups, q, categoryID); err != nil {
			return nil, err
		}
		return groups, nil
	}

	const q = `SELECT * FROM card_groups ORDER BY published_on DESC`
	if err := r.db.Select(&groups, q); err != nil {
		return nil, err
	}
	return groups, nil
}

// GetByGroupID returns a single group by its feed group_id.
func (r *GroupRepository) GetByGroupID(groupID int) (*models.Group, error) {
	const q = `SELECT * FROM card_groups WHERE group_id = $1 LIMIT 1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var group models.Group
	if err := stmt.Get(&group, groupID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &group, nil
}
