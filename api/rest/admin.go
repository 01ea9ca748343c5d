package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"github.com/shilloon/Virtual-Statistics-site/scheduler"
	"github.com/shilloon/Virtual-Statistics-site/seed"
	"github.com/shilloon/Virtual-Statistics-site/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db      *gorm.DB
	ranking *ranking.Service
	feed    *stats.Feed
	sched   *scheduler.Scheduler
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, rs *ranking.Service, feed *stats.Feed, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, ranking: rs, feed: feed, sched: sched, logger: logger}
}

// Metrics returns entity counts and scheduler state.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	counts := gin.H{}
	for name, probe := range map[string]interface{}{
		"players":      &model.Player{},
		"items":        &model.Item{},
		"skills":       &model.Skill{},
		"item_usages":  &model.ItemUsage{},
		"skill_usages": &model.SkillUsage{},
	} {
		var n int64
		if err := h.db.WithContext(c.Request.Context()).Model(probe).Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		counts[name] = n
	}
	c.JSON(http.StatusOK, gin.H{
		"counts":          counts,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

type seedRequest struct {
	Players   int   `json:"players"`
	BatchSize int   `json:"batch_size"`
	Seed      int64 `json:"seed"`
}

// Seed generates fake players, items, skills and usage records.
// POST /api/admin/seed
func (h *AdminHandler) Seed(c *gin.Context) {
	var req seedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	summary, err := seed.Run(c.Request.Context(), h.db, h.logger, seed.Options{
		Players:   req.Players,
		BatchSize: req.BatchSize,
		Seed:      req.Seed,
	})
	if err != nil {
		h.logger.Error("seed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type usageEvent struct {
	PlayerID int64  `json:"player_id" binding:"required"`
	Kind     string `json:"kind" binding:"required,oneof=item skill"`
	RefID    int64  `json:"ref_id" binding:"required"`
	Count    int    `json:"count" binding:"required,min=1"`
}

type ingestRequest struct {
	Events []usageEvent `json:"events" binding:"required,dive"`
}

// IngestUsage queues gameplay usage events for asynchronous recording.
// POST /api/admin/usage_events
func (h *AdminHandler) IngestUsage(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, ev := range req.Events {
		h.feed.Enqueue(stats.UsageEvent{
			PlayerID: ev.PlayerID,
			Kind:     stats.EventKind(ev.Kind),
			RefID:    ev.RefID,
			Count:    ev.Count,
		})
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": len(req.Events)})
}

// RefreshRanking rebuilds the leaderboard cache from the database.
// POST /api/admin/ranking/refresh
func (h *AdminHandler) RefreshRanking(c *gin.Context) {
	n, err := h.ranking.RefreshLeaderboard(c.Request.Context())
	if err != nil {
		h.logger.Error("ranking refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"refreshed": n})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so
// the server cannot be accidentally deployed without protection. Set a
// non-empty server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
