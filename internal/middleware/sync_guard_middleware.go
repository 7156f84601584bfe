package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tcgpulse/tcgpulse_api/internal/utils"
)

// SyncGuard serializes the sync trigger endpoints. The pipeline assumes a
// single active sync invocation at a time; overlapping triggers from an
// external cron would double-hit the rate-limited feed, so a second caller
// gets 409 instead of queueing.
type SyncGuard struct {
	mu   sync.Mutex
	busy bool
}

// NewSyncGuard constructs a SyncGuard.
func NewSyncGuard() *SyncGuard {
	return &SyncGuard{}
}

// Handle rejects requests while another guarded request is in flight.
func (g *SyncGuard) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.tryAcquire() {
			utils.Error(c, http.StatusConflict, "SYNC_IN_PROGRESS", "A sync run is already in progress")
			c.Abort()
			return
		}
		defer g.release()

		c.Next()
	}
}

func (g *SyncGuard) tryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

func (g *SyncGuard) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
}
