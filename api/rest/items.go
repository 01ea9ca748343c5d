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

// ItemHandler handles item REST endpoints.
type ItemHandler struct {
	db      *gorm.DB
	ranking *ranking.Service
	logger  *zap.Logger
}

// NewItemHandler creates an ItemHandler.
func NewItemHandler(db *gorm.DB, rs *ranking.Service, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{db: db, ranking: rs, logger: logger}
}

// List returns all items.
// GET /api/items
func (h *ItemHandler) List(c *gin.Context) {
	var items []model.Item
	if err := h.db.WithContext(c.Request.Context()).Find(&items).Error; err != nil {
		h.logger.Error("item list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get returns one item.
// GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var item model.Item
	err = h.db.WithContext(c.Request.Context()).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}
	if err != nil {
		h.logger.Error("item get failed", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Popular returns items ranked by total usage.
// GET /api/items/popular?type=WEAPON&tier=GOLD&limit=10
func (h *ItemHandler) Popular(c *gin.Context) {
	limit, ok := intQuery(c, "limit", ranking.DefaultPopularLimit, 1, 1000)
	if !ok {
		return
	}
	tier, ok := tierQuery(c)
	if !ok {
		return
	}
	rows, err := h.ranking.PopularItems(c.Request.Context(), ranking.PopularQuery{
		Type:  c.Query("type"),
		Tier:  tier,
		Limit: limit,
	})
	if err != nil {
		h.logger.Error("popular items failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": rows})
}
