package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tcgpulse/tcgpulse_api/internal/models"
)

// PriceHistoryRepository handles data access for the price_history table.
type PriceHistoryRepository struct {
	db *sqlx.DB
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository.
func NewPriceHistoryRepository(db *sqlx.DB) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Upsert inserts or updates one price snapshot keyed by
// (product_id, sub_type_name). The statement is evaluated server-side as a
// single atomic operation:
//
//   - first sync of a key: prev_* and diff_* stay NULL, prev_date is the
//     incoming sync date;
//   - every later sync: the stored current prices shift into prev_*
//     (always one generation back, never the old prev_*), diff_* becomes
//     new minus previous (NULL when either side is NULL), and prev_date
//     becomes the date the row was last written, i.e. the previous sync.
//
// The unique index on the conflict target is declared NULLS NOT DISTINCT so
// the null sub-type variant of a product still upserts into a single row.
func (r *PriceHistoryRepository) Upsert(rec *models.PriceHistory) error {
	const q = `
        INSERT INTO price_history (
            category_id, group_id, set_name, abbreviation,
            product_id, name, clean_name, image_url, url, type, sub_type_name,
            low_price, mid_price, high_price, market_price, direct_low_price,
            prev_date
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        ON CONFLICT (product_id, sub_type_name) DO UPDATE SET
            category_id  = EXCLUDED.category_id,
            group_id     = EXCLUDED.group_id,
            set_name     = EXCLUDED.set_name,
            abbreviation = EXCLUDED.abbreviation,
            name         = EXCLUDED.name,
            clean_name   = EXCLUDED.clean_name,
            image_url    = EXCLUDED.image_url,
            url          = EXCLUDED.url,
            type         = EXCLUDED.type,
            prev_low_price        = price_history.low_price,
            prev_mid_price        = price_history.mid_price,
            prev_high_price       = price_history.high_price,
            prev_market_price     = price_history.market_price,
            prev_direct_low_price = price_history.direct_low_price,
            low_price        = EXCLUDED.low_price,
            mid_price        = EXCLUDED.mid_price,
            high_price       = EXCLUDED.high_price,
            market_price     = EXCLUDED.market_price,
            direct_low_price = EXCLUDED.direct_low_price,
            diff_low_price        = EXCLUDED.low_price - price_history.low_price,
            diff_mid_price        = EXCLUDED.mid_price - price_history.mid_price,
            diff_high_price       = EXCLUDED.high_price - price_history.high_price,
            diff_market_price     = EXCLUDED.market_price - price_history.market_price,
            diff_direct_low_price = EXCLUDED.direct_low_price - price_history.direct_low_price,
            prev_date  = to_char(price_history.updated_at, 'YYYY-MM-DD'),
            updated_at = NOW()`

	stmt, err := r.db.Preparex(q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(
		rec.CategoryID,
		rec.GroupID,
		rec.SetName,
		rec.Abbreviation,
		rec.ProductID,
		rec.Name,
		rec.CleanName,
		rec.ImageURL,
		rec.URL,
		rec.Type,
		rec.SubTypeName,
		rec.LowPrice,
		rec.MidPrice,
		rec.HighPrice,
		rec.MarketPrice,
		rec.DirectLowPrice,
		rec.PrevDate,
	)
	return err
}

// GetRecent returns the most recently synced rows, newest first.
func (r *PriceHistoryRepository) GetRecent(limit int) ([]models.PriceHistory, error) {
	const q = `SELECT * FROM price_history ORDER BY prev_date DESC, updated_at DESC LIMIT $1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var rows []models.PriceHistory
	if err := stmt.Select(&rows, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns price rows filtered by group and/or category, newest first.
// A zero filter value means no filtering on that column.
func (r *PriceHistoryRepository) List(groupID, categoryID, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT * FROM price_history WHERE 1=1`
	args := []interface{}{}
	if groupID > 0 {
		args = append(args, groupID)
		q += fmt.Sprintf(" AND group_id = $%d", len(args))
	}
	if categoryID > 0 {
		args = append(args, categoryID)
		q += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY prev_date DESC, updated_at DESC LIMIT $%d", len(args))

	var rows []models.PriceHistory
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByGroupID returns every price row belonging to a group.
func (r *PriceHistoryRepository) GetByGroupID(groupID int) ([]models.PriceHistory, error) {
	const q = `SELECT * FROM price_history WHERE group_id = $1 ORDER BY product_id ASC, sub_type_name ASC NULLS FIRST`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var rows []models.PriceHistory
	if err := stmt.Select(&rows, groupID); err != nil {
		return nil, err
	}
	return rows, nil
}

// PageParams controls ListPaginated. SortColumn is validated against a
// whitelist to keep user input out of the ORDER BY clause.
type PageParams struct {
	Page     int
	PageSize int
	Search   string
	GroupID  int
	SortBy   string
	SortDir  string
}

// validSortColumns are the columns exposed for sorting in the paginated
// listing.
var validSortColumns = map[string]bool{
	"name":              true,
	"set_name":          true,
	"market_price":      true,
	"diff_market_price": true,
	"updated_at":        true,
}

// ListPaginated returns one page of price rows plus the total row count for
// the active filters.
func (r *PriceHistoryRepository) ListPaginated(p PageParams) ([]models.PriceHistory, int, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	sortBy := p.SortBy
	if !validSortColumns[sortBy] {
		sortBy = "market_price"
	}
	dir := "DESC"
	if strings.EqualFold(p.SortDir, "asc") {
		dir = "ASC"
	}

	where := " WHERE 1=1"
	args := []interface{}{}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		where += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if p.GroupID > 0 {
		args = append(args, p.GroupID)
		where += fmt.Sprintf(" AND group_id = $%d", len(args))
	}
	// Descending price sorts would otherwise surface unpriced rows first.
	if dir == "DESC" && (sortBy == "market_price" || sortBy == "diff_market_price") {
		where += fmt.Sprintf(" AND %s IS NOT NULL", sortBy)
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM price_history"+where, args...); err != nil {
		return nil, 0, err
	}

	offset := (p.Page - 1) * p.PageSize
	args = append(args, p.PageSize, offset)
	q := fmt.Sprintf(
		"SELECT * FROM price_history%s ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d",
		where, sortBy, dir, len(args)-1, len(args),
	)

	var rows []models.PriceHistory
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetDistinctSets returns every distinct set name present in the table.
func (r *PriceHistoryRepository) GetDistinctSets() ([]string, error) {
	const q = `SELECT DISTINCT set_name FROM price_history WHERE set_name IS NOT NULL ORDER BY set_name ASC`
	var sets []string
	if err := r.db.Select(&sets, q); err != nil {
		return nil, err
	}
	return sets, nil
}

// GetDistinctGroupIDs returns every distinct group id present in the table.
func (r *PriceHistoryRepository) GetDistinctGroupIDs() ([]int, error) {
	const q = `SELECT DISTINCT group_id FROM price_history WHERE group_id IS NOT NULL ORDER BY group_id ASC`
	var ids []int
	if err := r.db.Select(&ids, q); err != nil {
		return nil, err
	}
	return ids, nil
}
