package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shilloon/Virtual-Statistics-site/api/rest"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"github.com/shilloon/Virtual-Statistics-site/ranking"
	"github.com/shilloon/Virtual-Statistics-site/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAnalyticsRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	rankSvc := ranking.NewService(db, c, zap.NewNop())
	h := rest.NewAnalyticsHandler(rankSvc, zap.NewNop())

	r := gin.New()
	g := r.Group("/api/stats")
	g.GET("/top_players_items", h.TopPlayersItems)
	g.GET("/top_players_skills", h.TopPlayersSkills)
	return r, db
}

func TestAnalytics_TopPlayersItems(t *testing.T) {
	r, db := newAnalyticsRouter(t)
	item := &model.Item{Name: "Sword", ItemType: model.ItemTypeWeapon}
	require.NoError(t, db.Create(item).Error)
	// Ten players; only the two highest scores land in the top 20%.
	for i := 1; i <= 10; i++ {
		p := seedPlayer(t, db, fmt.Sprintf("p%d", i), model.TierGold, 10, i*100)
		if i >= 9 {
			require.NoError(t, db.Create(&model.ItemUsage{
				PlayerStatsID: p.Stats.ID, ItemID: item.ID, UsageCount: 99,
			}).Error)
		}
	}

	w := get(r, "/api/stats/top_players_items?top_percent=20")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ranking.TopItemsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 20, resp.TopPercent)
	assert.Equal(t, 2, resp.TopPlayerCount)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(2), resp.Items[0].UsageCount, "rows counted, not usage totals")
}

func TestAnalytics_TopPlayersItems_DefaultPercent(t *testing.T) {
	r, db := newAnalyticsRouter(t)
	for i := 1; i <= 10; i++ {
		seedPlayer(t, db, fmt.Sprintf("p%d", i), model.TierGold, 10, i*100)
	}

	w := get(r, "/api/stats/top_players_items")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ranking.TopItemsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.TopPercent)
	assert.Equal(t, 1, resp.TopPlayerCount)
	assert.Empty(t, resp.Items)
}

func TestAnalytics_TopPlayersItems_BadPercent(t *testing.T) {
	r, _ := newAnalyticsRouter(t)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/stats/top_players_items?top_percent=101").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/stats/top_players_items?top_percent=ten").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/stats/top_players_items?top_percent=-5").Code)
}

func TestAnalytics_TopPlayersSkills(t *testing.T) {
	r, db := newAnalyticsRouter(t)
	skill := &model.Skill{Name: "Fireball", SkillType: model.SkillTypeActive}
	require.NoError(t, db.Create(skill).Error)
	for i := 1; i <= 4; i++ {
		p := seedPlayer(t, db, fmt.Sprintf("p%d", i), model.TierGold, 10, i*100)
		require.NoError(t, db.Create(&model.SkillUsage{
			PlayerStatsID: p.Stats.ID, SkillID: skill.ID, UsageCount: i * 10,
		}).Error)
	}

	w := get(r, "/api/stats/top_players_skills?top_percent=50")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ranking.TopSkillsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TopPlayerCount)
	require.Len(t, resp.Skills, 1)
	assert.Equal(t, int64(2), resp.Skills[0].UsageCount)
}
