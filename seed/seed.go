package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shilloon/Virtual-Statistics-site/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls the generated dataset.
type Options struct {
	Players   int
	BatchSize int
	Seed      int64 // 0 = time-based
}

// Summary reports what a seed run created.
type Summary struct {
	Players int `json:"players"`
	Items   int `json:"items"`
	Skills  int `json:"skills"`
	Usages  int `json:"usages"`
}

const (
	defaultPlayers   = 5000
	defaultBatchSize = 500
)

// The fixed item catalog.
var itemCatalog = []model.Item{
	{Name: "Blazing Greatsword", ItemType: model.ItemTypeWeapon, Description: "Fire-element greatsword", Price: 3500},
	{Name: "Frostmourne Bow", ItemType: model.ItemTypeWeapon, Description: "Ice-element bow", Price: 3200},
	{Name: "Thunder Staff", ItemType: model.ItemTypeWeapon, Description: "Lightning-element staff", Price: 3800},
	{Name: "Assassin's Dagger", ItemType: model.ItemTypeWeapon, Description: "Raises critical strike chance", Price: 2800},
	{Name: "Steel Plate", ItemType: model.ItemTypeArmor, Description: "Raises physical defense", Price: 2500},
	{Name: "Mage Robe", ItemType: model.ItemTypeArmor, Description: "Raises magic defense", Price: 2300},
	{Name: "Thorn Mail", ItemType: model.ItemTypeArmor, Description: "Reflects damage", Price: 2800},
	{Name: "Ring of Might", ItemType: model.ItemTypeAccessory, Description: "Raises attack power", Price: 1500},
	{Name: "Amulet of Wisdom", ItemType: model.ItemTypeAccessory, Description: "Raises mana", Price: 1400},
	{Name: "Earring of Haste", ItemType: model.ItemTypeAccessory, Description: "Raises attack speed", Price: 1600},
	{Name: "Health Potion", ItemType: model.ItemTypeConsumable, Description: "Restores HP", Price: 50},
	{Name: "Mana Potion", ItemType: model.ItemTypeConsumable, Description: "Restores MP", Price: 50},
}

// The fixed skill catalog.
var skillCatalog = []model.Skill{
	{Name: "Fireball", SkillType: model.SkillTypeActive, Description: "Fire damage to one enemy", Cooldown: 5},
	{Name: "Ice Arrow", SkillType: model.SkillTypeActive, Description: "Slows the target", Cooldown: 4},
	{Name: "Lightning Strike", SkillType: model.SkillTypeActive, Description: "Area lightning damage", Cooldown: 8},
	{Name: "Heal", SkillType: model.SkillTypeActive, Description: "Restores ally HP", Cooldown: 10},
	{Name: "Toughness", SkillType: model.SkillTypePassive, Description: "Max HP +20%", Cooldown: 0},
	{Name: "Swiftness", SkillType: model.SkillTypePassive, Description: "Move speed +15%", Cooldown: 0},
	{Name: "Focus", SkillType: model.SkillTypePassive, Description: "Critical chance +10%", Cooldown: 0},
	{Name: "Meteor Fall", SkillType: model.SkillTypeUltimate, Description: "Summons a giant meteor", Cooldown: 120},
	{Name: "Time Stop", SkillType: model.SkillTypeUltimate, Description: "Freezes all enemies", Cooldown: 180},
	{Name: "Berserk", SkillType: model.SkillTypeUltimate, Description: "Doubles all stats", Cooldown: 150},
}

// tierWeights approximates a real ladder distribution, heaviest at the
// bottom: BRONZE..GRANDMASTER.
var tierWeights = []float64{30, 25, 20, 15, 7, 2.5, 0.5}

var nicknamePrefixes = []string{
	"Shadow", "Iron", "Storm", "Night", "Silver", "Crimson", "Frost",
	"Ember", "Ghost", "Lunar", "Savage", "Swift", "Mystic", "Rogue",
}

// Run populates the database with the item/skill catalogs, count players
// with tier-correlated levels, scores and match statistics, and random
// usage rows. Batched inserts keep large runs fast.
func Run(ctx context.Context, db *gorm.DB, logger *zap.Logger, opts Options) (*Summary, error) {
	if opts.Players <= 0 {
		opts.Players = defaultPlayers
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	summary := &Summary{}

	items, err := ensureItems(ctx, db)
	if err != nil {
		return nil, err
	}
	summary.Items = len(items)

	skills, err := ensureSkills(ctx, db)
	if err != nil {
		return nil, err
	}
	summary.Skills = len(skills)

	players, statsRows, err := createPlayers(ctx, db, rng, opts)
	if err != nil {
		return nil, err
	}
	summary.Players = len(players)

	usages, err := createUsages(ctx, db, rng, statsRows, items, skills, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	summary.Usages = usages

	logger.Info("seed finished",
		zap.Int("players", summary.Players),
		zap.Int("usages", summary.Usages),
		zap.Duration("elapsed", time.Since(start)))
	return summary, nil
}

func ensureItems(ctx context.Context, db *gorm.DB) ([]model.Item, error) {
	for i := range itemCatalog {
		item := itemCatalog[i]
		err := db.WithContext(ctx).Where(model.Item{Name: item.Name}).
			Attrs(model.Item{ItemType: item.ItemType, Description: item.Description, Price: item.Price}).
			FirstOrCreate(&item).Error
		if err != nil {
			return nil, fmt.Errorf("seed: item %q: %w", item.Name, err)
		}
	}
	var items []model.Item
	if err := db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("seed: load items: %w", err)
	}
	return items, nil
}

func ensureSkills(ctx context.Context, db *gorm.DB) ([]model.Skill, error) {
	for i := range skillCatalog {
		skill := skillCatalog[i]
		err := db.WithContext(ctx).Where(model.Skill{Name: skill.Name}).
			Attrs(model.Skill{SkillType: skill.SkillType, Description: skill.Description, Cooldown: skill.Cooldown}).
			FirstOrCreate(&skill).Error
		if err != nil {
			return nil, fmt.Errorf("seed: skill %q: %w", skill.Name, err)
		}
	}
	var skills []model.Skill
	if err := db.WithContext(ctx).Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("seed: load skills: %w", err)
	}
	return skills, nil
}

func createPlayers(ctx context.Context, db *gorm.DB, rng *rand.Rand, opts Options) ([]model.Player, []model.PlayerStats, error) {
	taken := make(map[string]bool, opts.Players)
	var existing []model.Player
	if err := db.WithContext(ctx).Select("nickname").Find(&existing).Error; err != nil {
		return nil, nil, fmt.Errorf("seed: load nicknames: %w", err)
	}
	for _, p := range existing {
		taken[p.Nickname] = true
	}

	players := make([]model.Player, 0, opts.Players)
	for i := 0; i < opts.Players; i++ {
		var nickname string
		for {
			nickname = fmt.Sprintf("%s%d",
				nicknamePrefixes[rng.Intn(len(nicknamePrefixes))],
				rng.Intn(9900)+100)
			if !taken[nickname] {
				taken[nickname] = true
				break
			}
		}

		ti := weightedTier(rng)
		lo := ti * 10
		if lo < model.MinLevel {
			lo = model.MinLevel
		}
		hi := (ti + 1) * 15
		if hi > model.MaxLevel {
			hi = model.MaxLevel
		}
		players = append(players, model.Player{
			Nickname:     nickname,
			Level:        lo + rng.Intn(hi-lo+1),
			Tier:         model.TierOrder[ti],
			RankingScore: ti*1000 + rng.Intn(1500+500*ti),
		})
	}
	if err := db.WithContext(ctx).CreateInBatches(&players, opts.BatchSize).Error; err != nil {
		return nil, nil, fmt.Errorf("seed: create players: %w", err)
	}

	statsRows := make([]model.PlayerStats, 0, len(players))
	for _, p := range players {
		totalGames := 50 + rng.Intn(451)
		wins := int(float64(totalGames) * (0.3 + rng.Float64()*0.4))
		statsRows = append(statsRows, model.PlayerStats{
			PlayerID:   p.ID,
			TotalGames: totalGames,
			Wins:       wins,
			Losses:     totalGames - wins,
			PlayTime:   totalGames * (20 + rng.Intn(21)),
		})
	}
	if err := db.WithContext(ctx).CreateInBatches(&statsRows, opts.BatchSize).Error; err != nil {
		return nil, nil, fmt.Errorf("seed: create player stats: %w", err)
	}
	return players, statsRows, nil
}

func createUsages(ctx context.Context, db *gorm.DB, rng *rand.Rand, statsRows []model.PlayerStats, items []model.Item, skills []model.Skill, batchSize int) (int, error) {
	var itemUsages []model.ItemUsage
	var skillUsages []model.SkillUsage

	for _, ps := range statsRows {
		for _, idx := range pick(rng, len(items), 2+rng.Intn(4)) {
			itemUsages = append(itemUsages, model.ItemUsage{
				PlayerStatsID: ps.ID,
				ItemID:        items[idx].ID,
				UsageCount:    1 + rng.Intn(100),
			})
		}
		for _, idx := range pick(rng, len(skills), 2+rng.Intn(3)) {
			skillUsages = append(skillUsages, model.SkillUsage{
				PlayerStatsID: ps.ID,
				SkillID:       skills[idx].ID,
				UsageCount:    1 + rng.Intn(100),
			})
		}
	}

	if len(itemUsages) > 0 {
		if err := db.WithContext(ctx).CreateInBatches(&itemUsages, batchSize).Error; err != nil {
			return 0, fmt.Errorf("seed: create item usages: %w", err)
		}
	}
	if len(skillUsages) > 0 {
		if err := db.WithContext(ctx).CreateInBatches(&skillUsages, batchSize).Error; err != nil {
			return 0, fmt.Errorf("seed: create skill usages: %w", err)
		}
	}
	return len(itemUsages) + len(skillUsages), nil
}

// weightedTier draws a tier index using tierWeights.
func weightedTier(rng *rand.Rand) int {
	total := 0.0
	for _, w := range tierWeights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range tierWeights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(tierWeights) - 1
}

// pick returns n distinct indices in [0, max).
func pick(rng *rand.Rand, max, n int) []int {
	if n > max {
		n = max
	}
	perm := rng.Perm(max)
	return perm[:n]
}
