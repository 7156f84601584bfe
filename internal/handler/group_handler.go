package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/repository"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
)

// GroupHandler serves card group read endpoints.
type GroupHandler struct {
	groupRepo *repository.GroupRepository
	priceRepo *repository.PriceHistoryRepository
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupRepo *repository.GroupRepository, priceRepo *repository.PriceHistoryRepository) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, priceRepo: priceRepo}
}

// ListGroups returns all card groups, newest published first.
// GET /v1/groups?categoryId=
func (h *GroupHandler) ListGroups(c *gin.Context) {
	categoryID, _ := strconv.Atoi(c.Query("categoryId"))

	groups, err := h.groupRepo.List(categoryID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list groups")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch group data")
		return
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved groups", groups)
}

// GetGroup returns one group together with its price history rows.
// GET /v1/groups/:groupId
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("groupId"))
	if err != nil || groupID <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid group id")
		return
	}

	group, err := h.groupRepo.GetByGroupID(groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, http.StatusNotFound, "GROUP_NOT_FOUND", "Group not found")
			return
		}
		log.Error().Err(err).Int("group_id", groupID).Msg("Failed to fetch group")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch group data")
		return
	}

	prices, err := h.priceRepo.GetByGroupID(groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("Failed to fetch group prices")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to fetch group price data")
		return
	}

	utils.Success(c, http.StatusOK, "Successfully retrieved group", gin.H{
		"group":        group,
		"priceHistory": prices,
	})
}
