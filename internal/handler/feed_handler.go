package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tcgpulse/tcgpulse_api/internal/utils"
	"github.com/tcgpulse/tcgpulse_api/pkg/tcgcsv"
)

const csvSampleSize = 5

// FeedHandler exposes a probe over the upstream feed's CSV snapshot,
// useful for checking feed health and column layout without a full sync.
type FeedHandler struct {
	feed *tcgcsv.Client
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed *tcgcsv.Client) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// FetchCSV downloads and parses a group's ProductsAndPrices.csv, returning
// the record count and a small sample.
// GET /v1/feed/csv?groupId=
func (h *FeedHandler) FetchCSV(c *gin.Context) {
	groupID, err := strconv.Atoi(c.Query("groupId"))
	if err != nil || groupID <= 0 {
		utils.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid group id")
		return
	}

	records, err := h.feed.FetchGroupCSV(c.Request.Context(), groupID)
	if err != nil {
		log.Error().Err(err).Int("group_id", groupID).Msg("CSV probe failed")
		if errors.Is(err, utils.ErrUpstreamMalformed) {
			utils.Error(c, http.StatusBadGateway, "UPSTREAM_MALFORMED", err.Error())
			return
		}
		utils.Error(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
		return
	}

	sample := records
	if len(sample) > csvSampleSize {
		sample = sample[:csvSampleSize]
	}

	utils.Success(c, http.StatusOK, "CSV fetched successfully", gin.H{
		"totalRecords":  len(records),
		"sampleRecords": sample,
	})
}
