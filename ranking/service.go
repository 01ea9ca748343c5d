package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shilloon/Virtual-Statistics-site/cache"
	"github.com/shilloon/Virtual-Statistics-site/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Defaults for the read operations' numeric parameters.
const (
	DefaultTopLimit     = 100
	DefaultPopularLimit = 10
	DefaultTopPercent   = 10
)

// topPercentileCap bounds the top-percentile usage result.
const topPercentileCap = 20

const leaderboardKey = "leaderboard:ranking_score"

// Service computes leaderboards, per-tier aggregates and item/skill
// popularity rankings. All operations are set-based reads; per-row
// accumulation is deliberately not offered because it costs one query
// per item on large catalogs.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewService creates a ranking Service.
func NewService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// TopPlayers returns up to limit players ordered by ranking score
// descending. Ties break by id ascending so pagination stays stable.
// tier restricts the result to one tier; "" or "ALL" means no filter.
// The unfiltered leaderboard is served from the cached sorted set when
// populated, falling back to the database.
func (s *Service) TopPlayers(ctx context.Context, tier string, limit int) ([]model.Player, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	filtered := tier != "" && tier != "ALL"
	if !filtered && s.cache != nil {
		if players, ok := s.topPlayersFromCache(ctx, limit); ok {
			return players, nil
		}
	}

	q := s.db.WithContext(ctx).Preload("Stats")
	if filtered {
		q = q.Where("tier = ?", tier)
	}
	var players []model.Player
	if err := q.Order("ranking_score DESC, id ASC").Limit(limit).Find(&players).Error; err != nil {
		return nil, fmt.Errorf("ranking: top players: %w", err)
	}

	if !filtered && s.cache != nil {
		for _, p := range players {
			_ = s.cache.ZAdd(ctx, leaderboardKey, float64(p.RankingScore), strconv.FormatInt(p.ID, 10))
		}
	}
	return players, nil
}

// topPlayersFromCache loads the leaderboard from the cached sorted set.
// Returns ok=false when the set is empty, holds fewer members than the
// request asks for, or any lookup fails. The member-count check matters:
// the set may have been seeded by a smaller query, and serving it for a
// larger limit would silently truncate the leaderboard.
func (s *Service) topPlayersFromCache(ctx context.Context, limit int) ([]model.Player, bool) {
	members, err := s.cache.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1))
	if err != nil || len(members) < limit {
		return nil, false
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	var players []model.Player
	if err := s.db.WithContext(ctx).Preload("Stats").Where("id IN ?", ids).Find(&players).Error; err != nil {
		return nil, false
	}
	byID := make(map[int64]model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	ordered := make([]model.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, true
}

// RefreshLeaderboard rebuilds the cached leaderboard sorted set from the
// database and returns the number of entries written. Called periodically
// by the scheduler and on demand from the admin surface.
func (s *Service) RefreshLeaderboard(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	var players []model.Player
	if err := s.db.WithContext(ctx).Select("id, ranking_score").
		Order("ranking_score DESC, id ASC").Limit(DefaultTopLimit).
		Find(&players).Error; err != nil {
		return 0, fmt.Errorf("ranking: refresh leaderboard: %w", err)
	}
	if err := s.cache.Del(ctx, leaderboardKey); err != nil {
		s.logger.Warn("leaderboard cache clear failed", zap.Error(err))
	}
	for _, p := range players {
		_ = s.cache.ZAdd(ctx, leaderboardKey, float64(p.RankingScore), strconv.FormatInt(p.ID, 10))
	}
	return len(players), nil
}

// TierStat is the aggregate triple for one tier.
type TierStat struct {
	Tier            string  `json:"tier"`
	Count           int64   `json:"count"`
	AvgLevel        float64 `json:"avg_level"`
	AvgRankingScore float64 `json:"avg_ranking_score"`
}

// TierStats returns one aggregate row per tier code, always all seven in
// declaration order. Empty tiers report zero count and zero averages.
// A non-empty tier argument pre-filters the population, zeroing every
// other tier's row.
func (s *Service) TierStats(ctx context.Context, tier string) ([]TierStat, error) {
	q := s.db.WithContext(ctx).Model(&model.Player{}).
		Select("tier, COUNT(*) AS count, AVG(level) AS avg_level, AVG(ranking_score) AS avg_ranking_score").
		Group("tier")
	if tier != "" {
		q = q.Where("tier = ?", tier)
	}
	var rows []TierStat
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("ranking: tier stats: %w", err)
	}

	byTier := make(map[string]TierStat, len(rows))
	for _, r := range rows {
		byTier[r.Tier] = r
	}
	out := make([]TierStat, 0, len(model.TierOrder))
	for _, code := range model.TierOrder {
		if r, ok := byTier[code]; ok {
			out = append(out, r)
		} else {
			out = append(out, TierStat{Tier: code})
		}
	}
	return out, nil
}

// PopularQuery parameterizes the popularity rankings.
type PopularQuery struct {
	Type  string // item/skill category, exact match; "" = all
	Tier  string // restrict to usage by players of this tier; ""/"ALL" = all
	Limit int    // result cap; <= 0 means DefaultPopularLimit
}

// PopularItem is one row of the item popularity ranking.
type PopularItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	TotalUsage  int64  `json:"total_usage"`
}

// PopularSkill is one row of the skill popularity ranking.
type PopularSkill struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SkillType   string `json:"skill_type"`
	Description string `json:"description"`
	Cooldown    int    `json:"cooldown"`
	TotalUsage  int64  `json:"total_usage"`
}

// PopularItems ranks items by the sum of their usage counts, descending.
//
// The two tier modes differ on purpose: without a tier filter the query
// left-joins usages so items nobody used still appear with total_usage 0;
// with a tier filter it inner-joins through player stats, so items with no
// usage from that tier are excluded entirely.
func (s *Service) PopularItems(ctx context.Context, q PopularQuery) ([]PopularItem, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPopularLimit
	}

	base := s.db.WithContext(ctx).Table("items AS i")
	if q.Tier != "" && q.Tier != "ALL" {
		base = base.
			Select("i.id, i.name, i.item_type, i.description, i.price, SUM(iu.usage_count) AS total_usage").
			Joins("INNER JOIN item_usages iu ON iu.item_id = i.id").
			Joins("INNER JOIN player_stats ps ON ps.id = iu.player_stats_id").
			Joins("INNER JOIN players p ON p.id = ps.player_id").
			Where("p.tier = ?", q.Tier)
	} else {
		base = base.
			Select("i.id, i.name, i.item_type, i.description, i.price, COALESCE(SUM(iu.usage_count), 0) AS total_usage").
			Joins("LEFT JOIN item_usages iu ON iu.item_id = i.id")
	}
	if q.Type != "" {
		base = base.Where("i.item_type = ?", q.Type)
	}

	var rows []PopularItem
	err := base.Group("i.id, i.name, i.item_type, i.description, i.price").
		Order("total_usage DESC, i.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking: popular items: %w", err)
	}
	return rows, nil
}

// PopularSkills ranks skills by the sum of their usage counts, descending.
// Join semantics mirror PopularItems: left join untiered, inner join tiered.
func (s *Service) PopularSkills(ctx context.Context, q PopularQuery) ([]PopularSkill, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPopularLimit
	}

	base := s.db.WithContext(ctx).Table("skills AS sk")
	if q.Tier != "" && q.Tier != "ALL" {
		base = base.
			Select("sk.id, sk.name, sk.skill_type, sk.description, sk.cooldown, SUM(su.usage_count) AS total_usage").
			Joins("INNER JOIN skill_usages su ON su.skill_id = sk.id").
			Joins("INNER JOIN player_stats ps ON ps.id = su.player_stats_id").
			Joins("INNER JOIN players p ON p.id = ps.player_id").
			Where("p.tier = ?", q.Tier)
	} else {
		base = base.
			Select("sk.id, sk.name, sk.skill_type, sk.description, sk.cooldown, COALESCE(SUM(su.usage_count), 0) AS total_usage").
			Joins("LEFT JOIN skill_usages su ON su.skill_id = sk.id")
	}
	if q.Type != "" {
		base = base.Where("sk.skill_type = ?", q.Type)
	}

	var rows []PopularSkill
	err := base.Group("sk.id, sk.name, sk.skill_type, sk.description, sk.cooldown").
		Order("total_usage DESC, sk.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking: popular skills: %w", err)
	}
	return rows, nil
}

// TopUsageItem is one row of the top-percentile item ranking.
// UsageCount counts usage rows, not the sum of their counters.
type TopUsageItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ItemType    string `json:"item_type"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	UsageCount  int64  `json:"usage_count"`
}

// TopUsageSkill is one row of the top-percentile skill ranking.
type TopUsageSkill struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SkillType   string `json:"skill_type"`
	Description string `json:"description"`
	Cooldown    int    `json:"cooldown"`
	UsageCount  int64  `json:"usage_count"`
}

// TopItemsResult is the top-percentile item ranking with its parameters.
type TopItemsResult struct {
	TopPercent     int            `json:"top_percent"`
	TopPlayerCount int            `json:"top_player_count"`
	Items          []TopUsageItem `json:"items"`
}

// TopSkillsResult is the top-percentile skill ranking with its parameters.
type TopSkillsResult struct {
	TopPercent     int             `json:"top_percent"`
	TopPlayerCount int             `json:"top_player_count"`
	Skills         []TopUsageSkill `json:"skills"`
}

// TopPercentileItems counts item usage rows among the top topPercent% of
// players by ranking score. floor(total * percent / 100) players make the
// cut; zero players yields an empty list, not an error. The result is
// capped at 20 rows. Unlike PopularItems this counts rows instead of
// summing usage counters: it answers "how many top players touch this
// item", not "how often".
func (s *Service) TopPercentileItems(ctx context.Context, topPercent int) (*TopItemsResult, error) {
	topCount, err := s.topPlayerCount(ctx, topPercent)
	if err != nil {
		return nil, err
	}
	result := &TopItemsResult{
		TopPercent:     topPercent,
		TopPlayerCount: topCount,
		Items:          []TopUsageItem{},
	}
	if topCount <= 0 {
		return result, nil
	}

	topIDs := s.db.WithContext(ctx).Model(&model.Player{}).
		Select("id").Order("ranking_score DESC, id ASC").Limit(topCount)

	err = s.db.WithContext(ctx).Table("items AS i").
		Select("i.id, i.name, i.item_type, i.description, i.price, COUNT(iu.id) AS usage_count").
		Joins("INNER JOIN item_usages iu ON iu.item_id = i.id").
		Joins("INNER JOIN player_stats ps ON ps.id = iu.player_stats_id").
		Where("ps.player_id IN (?)", topIDs).
		Group("i.id, i.name, i.item_type, i.description, i.price").
		Order("usage_count DESC, i.id ASC").
		Limit(topPercentileCap).
		Scan(&result.Items).Error
	if err != nil {
		return nil, fmt.Errorf("ranking: top percentile items: %w", err)
	}
	return result, nil
}

// TopPercentileSkills is the skill counterpart of TopPercentileItems.
func (s *Service) TopPercentileSkills(ctx context.Context, topPercent int) (*TopSkillsResult, error) {
	topCount, err := s.topPlayerCount(ctx, topPercent)
	if err != nil {
		return nil, err
	}
	result := &TopSkillsResult{
		TopPercent:     topPercent,
		TopPlayerCount: topCount,
		Skills:         []TopUsageSkill{},
	}
	if topCount <= 0 {
		return result, nil
	}

	topIDs := s.db.WithContext(ctx).Model(&model.Player{}).
		Select("id").Order("ranking_score DESC, id ASC").Limit(topCount)

	err = s.db.WithContext(ctx).Table("skills AS sk").
		Select("sk.id, sk.name, sk.skill_type, sk.description, sk.cooldown, COUNT(su.id) AS usage_count").
		Joins("INNER JOIN skill_usages su ON su.skill_id = sk.id").
		Joins("INNER JOIN player_stats ps ON ps.id = su.player_stats_id").
		Where("ps.player_id IN (?)", topIDs).
		Group("sk.id, sk.name, sk.skill_type, sk.description, sk.cooldown").
		Order("usage_count DESC, sk.id ASC").
		Limit(topPercentileCap).
		Scan(&result.Skills).Error
	if err != nil {
		return nil, fmt.Errorf("ranking: top percentile skills: %w", err)
	}
	return result, nil
}

// topPlayerCount computes floor(total players * percent / 100).
func (s *Service) topPlayerCount(ctx context.Context, percent int) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Player{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("ranking: player count: %w", err)
	}
	return int(total) * percent / 100, nil
}
