package relay

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandleHealth is the non-transport health surface.
func (s *Server) HandleHealth(c *gin.Context) {
	active, uptime := s.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"activeConnections": active,
		"uptime":            int64(uptime.Seconds()),
	})
}

// HandleReset clears the rate-limit records for one origin across every
// policy namespace. Administrative unblocking, e.g. after a misbehaving
// client was fixed.
func (s *Server) HandleReset(c *gin.Context) {
	origin := c.Query("identifier")
	if origin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "identifier required"})
		return
	}
	if err := s.ResetOrigin(c.Request.Context(), origin); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "identifier": origin})
}
