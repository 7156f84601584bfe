package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/service"
	"github.com/tcgpulse/tcgpulse_api/internal/utils"
)

// SyncHandler exposes the sync trigger surface consumed by external cron.
type SyncHandler struct {
	syncSvc *service.SyncService
	bulkSvc *service.BulkSyncService
	jobSvc  *service.JobService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncSvc *service.SyncService, bulkSvc *service.BulkSyncService, jobSvc *service.JobService) *SyncHandler {
	return &SyncHandler{syncSvc: syncSvc, bulkSvc: bulkSvc, jobSvc: jobSvc}
}

// SyncGroup syncs price data for a single group.
// POST /v1/sync/groups/:groupId
func (h *SyncHandler) SyncGroup(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Param("groupId"))
	if err != nil || groupID <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid group id")
		return
	}

	summary, err := h.syncSvc.SyncGroupByID(c.Request.Context(), groupID)
	if err != nil {
		h.syncError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Group sync completed", summary)
}

// SyncAll syncs price data for every group in the feed.
// POST /v1/sync/all
func (h *SyncHandler) SyncAll(c *gin.Context) {
	report, err := h.bulkSvc.SyncAll(c.Request.Context())
	if err != nil {
		h.syncError(c, err)
		return
	}

	utils.Success(c, http.StatusOK, "Bulk sync completed", report)
}

// ProcessJobs claims and processes one batch of pending sync jobs.
// POST /v1/sync/jobs
func (h *SyncHandler) ProcessJobs(c *gin.Context) {
	report, err := h.jobSvc.ProcessPending(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("stage", "job_claim").Msg("Failed to claim job batch")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Failed to claim pending jobs")
		return
	}

	utils.Success(c, http.StatusOK, "Job batch completed", report)
}

// syncError maps pipeline errors onto the response taxonomy.
func (h *SyncHandler) syncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidInput):
		utils.Error(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, utils.ErrGroupNotFound):
		utils.Error(c, http.StatusNotFound, "GROUP_NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrUpstreamUnavailable):
		utils.Error(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	case errors.Is(err, utils.ErrUpstreamMalformed):
		utils.Error(c, http.StatusBadGateway, "UPSTREAM_MALFORMED", err.Error())
	default:
		log.Error().Err(err).Msg("Sync failed")
		utils.Error(c, http.StatusInternalServerError, "PERSISTENCE_ERROR", "Sync failed")
	}
}
