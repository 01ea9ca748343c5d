package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SkillHandler handles skill REST endpoints.
type SkillHandler struct {
	db      *gorm.DB
	ranking *ranking.Service
	logger  *zap.Logger
}

// NewSkillHandler creates a SkillHandler.
func NewSkillHandler(db *gorm.DB, rs *ranking.Service, logger *zap.Logger) *SkillHandler {
	return &SkillHandler{db: db, ranking: rs, logger: logger}
}

// List returns all skills.
// GET /api/skills
func (h *SkillHandler) List(c *gin.Context) {
	var skills []model.Skill
	if err := h.db.WithContext(c.Request.Context()).Find(&skills).Error; err != nil {
		h.logger.Error("skill list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// Get returns one skill.
// GET /api/skills/:id
func (h *SkillHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid skill id"})
		return
	}
	var skill model.Skill
	err = h.db.WithContext(c.Request.Context()).First(&skill, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "skill not found"})
		return
	}
	if err != nil {
		h.logger.Error("skill get failed", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, skill)
}

// Popular returns skills ranked by total usage.
// GET /api/skills/popular?type=ACTIVE&tier=GOLD&limit=10
func (h *SkillHandler) Popular(c *gin.Context) {
	limit, ok := intQuery(c, "limit", ranking.DefaultPopularLimit, 1, 1000)
	if !ok {
		return
	}
	tier, ok := tierQuery(c)
	if !ok {
		return
	}
	rows, err := h.ranking.PopularSkills(c.Request.Context(), ranking.PopularQuery{
		Type:  c.Query("type"),
		Tier:  tier,
		Limit: limit,
	})
	if err != nil {
		h.logger.Error("popular skills failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": rows})
}
