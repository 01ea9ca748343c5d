package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"go.uber.org/zap"
)

// AnalyticsHandler handles the top-percentile usage endpoints.
type AnalyticsHandler struct {
	ranking *ranking.Service
	logger  *zap.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(rs *ranking.Service, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{ranking: rs, logger: logger}
}

// TopPlayersItems counts item usage rows among the top N% of players.
// GET /api/stats/top_players_items?top_percent=10
func (h *AnalyticsHandler) TopPlayersItems(c *gin.Context) {
	pct, ok := intQuery(c, "top_percent", ranking.DefaultTopPercent, 0, 100)
	if !ok {
		return
	}
	result, err := h.ranking.TopPercentileItems(c.Request.Context(), pct)
	if err != nil {
		h.logger.Error("top players items failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// TopPlayersSkills counts skill usage rows among the top N% of players.
// GET /api/stats/top_players_skills?top_percent=10
func (h *AnalyticsHandler) TopPlayersSkills(c *gin.Context) {
	pct, ok := intQuery(c, "top_percent", ranking.DefaultTopPercent, 0, 100)
	if !ok {
		return
	}
	result, err := h.ranking.TopPercentileSkills(c.Request.Context(), pct)
	if err != nil {
		h.logger.Error("top players skills failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}
