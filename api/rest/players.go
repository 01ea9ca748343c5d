package rest

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlayerHandler handles player REST endpoints.
type PlayerHandler struct {
	db      *gorm.DB
	ranking *ranking.Service
	logger  *zap.Logger
}

// NewPlayerHandler creates a PlayerHandler.
func NewPlayerHandler(db *gorm.DB, rs *ranking.Service, logger *zap.Logger) *PlayerHandler {
	return &PlayerHandler{db: db, ranking: rs, logger: logger}
}

// playerSummary is the flat list-view record.
type playerSummary struct {
	ID           int64     `json:"id"`
	Nickname     string    `json:"nickname"`
	Level        int       `json:"level"`
	Tier         string    `json:"tier"`
	RankingScore int       `json:"ranking_score"`
	CreatedAt    time.Time `json:"created_at"`
	WinRate      float64   `json:"win_rate"`
}

func summarize(p model.Player) playerSummary {
	s := playerSummary{
		ID:           p.ID,
		Nickname:     p.Nickname,
		Level:        p.Level,
		Tier:         p.Tier,
		RankingScore: p.RankingScore,
		CreatedAt:    p.CreatedAt,
	}
	// Recomputed from the totals, never read from storage.
	if p.Stats != nil && p.Stats.TotalGames > 0 {
		rate := float64(p.Stats.Wins) / float64(p.Stats.TotalGames) * 100
		s.WinRate = math.Round(rate*100) / 100
	}
	return s
}

// List returns all players as flat records.
// GET /api/players
func (h *PlayerHandler) List(c *gin.Context) {
	var players []model.Player
	if err := h.db.WithContext(c.Request.Context()).Preload("Stats").Find(&players).Error; err != nil {
		h.logger.Error("player list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]playerSummary, len(players))
	for i, p := range players {
		out[i] = summarize(p)
	}
	c.JSON(http.StatusOK, gin.H{"players": out})
}

// Get returns one player with nested stats and usage records.
// GET /api/players/:id
func (h *PlayerHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}
	var player model.Player
	err = h.db.WithContext(c.Request.Context()).
		Preload("Stats.ItemUsages.Item").
		Preload("Stats.SkillUsages.Skill").
		First(&player, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
		return
	}
	if err != nil {
		h.logger.Error("player get failed", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, player)
}

// TopRankers returns the leaderboard, optionally restricted to one tier.
// GET /api/players/top_rankers?limit=100&tier=GOLD
func (h *PlayerHandler) TopRankers(c *gin.Context) {
	limit, ok := intQuery(c, "limit", ranking.DefaultTopLimit, 1, 1000)
	if !ok {
		return
	}
	tier, ok := tierQuery(c)
	if !ok {
		return
	}
	players, err := h.ranking.TopPlayers(c.Request.Context(), tier, limit)
	if err != nil {
		h.logger.Error("top rankers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]playerSummary, len(players))
	for i, p := range players {
		out[i] = summarize(p)
	}
	c.JSON(http.StatusOK, gin.H{"players": out})
}

// TierStats returns the per-tier aggregate triples, keyed by tier code.
// Every tier code appears, empty ones with zeroes.
// GET /api/players/tier_stats?tier=GOLD
func (h *PlayerHandler) TierStats(c *gin.Context) {
	tier, ok := tierQuery(c)
	if !ok {
		return
	}
	if tier == "ALL" {
		tier = ""
	}
	rows, err := h.ranking.TierStats(c.Request.Context(), tier)
	if err != nil {
		h.logger.Error("tier stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make(map[string]gin.H, len(rows))
	for _, r := range rows {
		out[r.Tier] = gin.H{
			"count":             r.Count,
			"avg_level":         r.AvgLevel,
			"avg_ranking_score": r.AvgRankingScore,
		}
	}
	c.JSON(http.StatusOK, out)
}
