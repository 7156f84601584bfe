package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/cache"
	"github.com/tcgpulse/tcgpulse_api/internal/repository"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
)

const recentLimit = 10

// PriceHandler serves price history read endpoints.
type PriceHandler struct {
	priceRepo  *repository.PriceHistoryRepository
	priceCache *cache.PriceCache
}

// NewPriceHandler creates a new PriceHandler. priceCache may be nil.
func NewPriceHandler(priceRepo *repository.PriceHistoryRepository, priceCache *cache.PriceCache) *PriceHandler {
	return &PriceHandler{priceRepo: priceRepo, priceCache: priceCache}
}

// ListPrices returns price rows with optional group/category filters.
// GET /v1/prices?groupId=&categoryId=&limit=
func (h *PriceHandler) ListPrices(c *gin.Context) {
	groupID, _ := strconv.Atoi(c.Query("groupId"))
	categoryID, _ := strconv.Atoi(c.Query("categoryId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	rows, err := h.priceRepo.List(groupID, categoryID, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list prices")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch price data")
		return
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved prices", rows)
}

// GetRecent returns the most recently synced rows.
// GET /v1/prices/recent
func (h *PriceHandler) GetRecent(c *gin.Context) {
	ctx := c.Request.Context()

	if h.priceCache != nil {
		if rows, ok := h.priceCache.GetRecent(ctx); ok {
			utils.Success(c, http.StatusOK, "Successfully retrieved recent prices", rows)
			return
		}
	}

	rows, err := h.priceRepo.GetRecent(recentLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch recent prices")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch recent price data")
		return
	}

	if h.priceCache != nil {
		if err := h.priceCache.SetRecent(ctx, rows); err != nil {
			log.Warn().Err(err).Msg("Failed to cache recent prices")
		}
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved recent prices", rows)
}

// ListPaginated returns one page of price rows with search and sorting.
// GET /v1/prices/paginated?page=&pageSize=&search=&set=&sort=&dir=
func (h *PriceHandler) ListPaginated(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	groupID, _ := strconv.Atoi(c.Query("set"))

	params := repository.PageParams{
		Page:     page,
		PageSize: pageSize,
		Search:   c.Query("search"),
		GroupID:  groupID,
		SortBy:   c.DefaultQuery("sort", "market_price"),
		SortDir:  c.DefaultQuery("dir", "desc"),
	}

	rows, total, err := h.priceRepo.ListPaginated(params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch paginated prices")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch cards data")
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Successfully retrieved cards", rows, params.Page, params.PageSize, total)
}

// GetSets returns every distinct set name, for filter dropdowns.
// GET /v1/prices/sets
func (h *PriceHandler) GetSets(c *gin.Context) {
	ctx := c.Request.Context()

	if h.priceCache != nil {
		if sets, ok := h.priceCache.GetSets(ctx); ok {
			utils.Success(c, http.StatusOK, "Successfully retrieved sets", gin.H{"sets": sets})
			return
		}
	}

	sets, err := h.priceRepo.GetDistinctSets()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch distinct sets")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch sets data")
		return
	}

	if h.priceCache != nil {
		if err := h.priceCache.SetSets(ctx, sets); err != nil {
			log.Warn().Err(err).Msg("Failed to cache distinct sets")
		}
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved sets", gin.H{"sets": sets})
}
