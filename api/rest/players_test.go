package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func init() {
	gin.SetMode(gin.TestMode)
}

func newPlayerRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	rankSvc := ranking.NewService(db, c, zap.NewNop())
	h := rest.NewPlayerHandler(db, rankSvc, zap.NewNop())

	r := gin.New()
	g := r.Group("/api/players")
	g.GET("", h.List)
	g.GET("/top_rankers", h.TopRankers)
	g.GET("/tier_stats", h.TierStats)
	g.GET("/:id", h.Get)
	return r, db
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedPlayer(t *testing.T, db *gorm.DB, nickname, tier string, level, score int) *model.Player {
	t.Helper()
	p := &model.Player{Nickname: nickname, Level: level, Tier: tier, RankingScore: score}
	require.NoError(t, db.Create(p).Error)
	p.Stats = &model.PlayerStats{PlayerID: p.ID, TotalGames: 10, Wins: 4, Losses: 6}
	require.NoError(t, db.Create(p.Stats).Error)
	return p
}

func TestPlayers_List(t *testing.T) {
	r, db := newPlayerRouter(t)
	seedPlayer(t, db, "alice", model.TierGold, 30, 3000)
	seedPlayer(t, db, "bob", model.TierSilver, 20, 1500)

	w := get(r, "/api/players")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Players []map[string]interface{} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Players, 2)
	// Flat records: win rate computed from the totals, no nested stats.
	assert.Equal(t, float64(40), resp.Players[0]["win_rate"])
	assert.NotContains(t, resp.Players[0], "stats")
}

func TestPlayers_Detail(t *testing.T) {
	r, db := newPlayerRouter(t)
	p := seedPlayer(t, db, "alice", model.TierGold, 30, 3000)
	item := &model.Item{Name: "Sword", ItemType: model.ItemTypeWeapon, Price: 100}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Create(&model.ItemUsage{
		PlayerStatsID: p.Stats.ID, ItemID: item.ID, UsageCount: 3,
	}).Error)

	w := get(r, fmt.Sprintf("/api/players/%d", p.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	stats := resp["stats"].(map[string]interface{})
	usages := stats["item_usages"].([]interface{})
	require.Len(t, usages, 1)
	usage := usages[0].(map[string]interface{})
	assert.Equal(t, float64(3), usage["usage_count"])
	assert.Equal(t, "Sword", usage["item"].(map[string]interface{})["name"])
}

func TestPlayers_Detail_NotFound(t *testing.T) {
	r, _ := newPlayerRouter(t)
	w := get(r, "/api/players/424242")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlayers_TopRankers(t *testing.T) {
	r, db := newPlayerRouter(t)
	for i := 1; i <= 5; i++ {
		seedPlayer(t, db, fmt.Sprintf("p%d", i), model.TierGold, 10, i*100)
	}

	w := get(r, "/api/players/top_rankers?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Players []map[string]interface{} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Players, 2)
	assert.Equal(t, "p5", resp.Players[0]["nickname"])
}

func TestPlayers_TopRankers_TierParam(t *testing.T) {
	r, db := newPlayerRouter(t)
	seedPlayer(t, db, "gold", model.TierGold, 10, 100)
	seedPlayer(t, db, "silver", model.TierSilver, 10, 900)

	w := get(r, "/api/players/top_rankers?tier=GOLD")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Players []map[string]interface{} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Players, 1)
	assert.Equal(t, "gold", resp.Players[0]["nickname"])
}

func TestPlayers_TopRankers_BadParams(t *testing.T) {
	r, _ := newPlayerRouter(t)
	// Malformed numerics are rejected, not coerced.
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/players/top_rankers?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/players/top_rankers?limit=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/players/top_rankers?tier=WOOD").Code)
}

func TestPlayers_TierStats(t *testing.T) {
	r, db := newPlayerRouter(t)
	seedPlayer(t, db, "g1", model.TierGold, 20, 3000)
	seedPlayer(t, db, "g2", model.TierGold, 40, 5000)
	seedPlayer(t, db, "b1", model.TierBronze, 10, 500)

	w := get(r, "/api/players/tier_stats")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]struct {
		Count           int64   `json:"count"`
		AvgLevel        float64 `json:"avg_level"`
		AvgRankingScore float64 `json:"avg_ranking_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 7, "all tiers present, empty ones included")
	assert.Equal(t, int64(2), resp["GOLD"].Count)
	assert.Equal(t, 30.0, resp["GOLD"].AvgLevel)
	assert.Equal(t, int64(0), resp["MASTER"].Count)

	var total int64
	for _, v := range resp {
		total += v.Count
	}
	assert.Equal(t, int64(3), total)
}

func TestPlayers_TierStats_Filtered(t *testing.T) {
	r, db := newPlayerRouter(t)
	seedPlayer(t, db, "g1", model.TierGold, 20, 3000)
	seedPlayer(t, db, "b1", model.TierBronze, 10, 500)

	w := get(r, "/api/players/tier_stats?tier=GOLD")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["GOLD"].Count)
	assert.Equal(t, int64(0), resp["BRONZE"].Count)
}
