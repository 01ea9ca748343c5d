package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/shilloon/Virtual-Statistics-site/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Validation errors reported to the write surface.
var (
	ErrDuplicateNickname = errors.New("stats: nickname already taken")
	ErrDuplicateName     = errors.New("stats: name already taken")
	ErrLevelOutOfRange   = errors.New("stats: level out of range")
	ErrUnknownTier       = errors.New("stats: unknown tier")
	ErrUnknownType       = errors.New("stats: unknown type")
)

// Service is the write path: player/item/skill creation, match results and
// usage upserts. Every PlayerStats persist goes through the model's
// BeforeSave hook, so the stored win rate always matches the totals.
//
// wins+losses <= total_games is intentionally not enforced; the statistics
// stay free-form.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a stats Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CreatePlayer creates a player together with its zeroed stats row in one
// transaction.
func (svc *Service) CreatePlayer(ctx context.Context, nickname string, level int, tier string, rankingScore int) (*model.Player, error) {
	if level < model.MinLevel || level > model.MaxLevel {
		return nil, ErrLevelOutOfRange
	}
	if !model.ValidTier(tier) {
		return nil, ErrUnknownTier
	}

	player := &model.Player{
		Nickname:     nickname,
		Level:        level,
		Tier:         tier,
		RankingScore: rankingScore,
	}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Player{}).Where("nickname = ?", nickname).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateNickname
		}
		if err := tx.Create(player).Error; err != nil {
			return err
		}
		player.Stats = &model.PlayerStats{PlayerID: player.ID}
		return tx.Create(player.Stats).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateNickname) {
			return nil, err
		}
		return nil, fmt.Errorf("stats: create player: %w", err)
	}
	return player, nil
}

// CreateItem creates an item after checking the name is free.
func (svc *Service) CreateItem(ctx context.Context, name, itemType, description string, price int) (*model.Item, error) {
	valid := false
	for _, t := range model.ItemTypes {
		if t == itemType {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrUnknownType
	}
	item := &model.Item{Name: name, ItemType: itemType, Description: description, Price: price}
	if err := svc.createNamed(ctx, &model.Item{}, name, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateSkill creates a skill after checking the name is free.
func (svc *Service) CreateSkill(ctx context.Context, name, skillType, description string, cooldown int) (*model.Skill, error) {
	valid := false
	for _, t := range model.SkillTypes {
		if t == skillType {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrUnknownType
	}
	skill := &model.Skill{Name: name, SkillType: skillType, Description: description, Cooldown: cooldown}
	if err := svc.createNamed(ctx, &model.Skill{}, name, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

func (svc *Service) createNamed(ctx context.Context, probe interface{}, name string, value interface{}) error {
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(probe).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateName
		}
		return tx.Create(value).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			return err
		}
		return fmt.Errorf("stats: create %q: %w", name, err)
	}
	return nil
}

// RecordMatch applies one match result to a player's stats. The read,
// increment and save run in one transaction so a reader never observes new
// totals next to a stale win rate.
func (svc *Service) RecordMatch(ctx context.Context, playerID int64, won bool, playTimeMin int) error {
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ps model.PlayerStats
		if err := tx.Where("player_id = ?", playerID).First(&ps).Error; err != nil {
			return err
		}
		ps.TotalGames++
		if won {
			ps.Wins++
		} else {
			ps.Losses++
		}
		ps.PlayTime += playTimeMin
		return tx.Save(&ps).Error
	})
	if err != nil {
		return fmt.Errorf("stats: record match for player %d: %w", playerID, err)
	}
	return nil
}

// RecordItemUse upserts the (stats, item) usage row: the first use creates
// it, later uses increment the counter. LastUsed is bumped on every save.
func (svc *Service) RecordItemUse(ctx context.Context, playerID, itemID int64, count int) error {
	if count <= 0 {
		return nil
	}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statsID, err := statsIDFor(tx, playerID)
		if err != nil {
			return err
		}
		var usage model.ItemUsage
		err = tx.Where("player_stats_id = ? AND item_id = ?", statsID, itemID).First(&usage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			usage = model.ItemUsage{PlayerStatsID: statsID, ItemID: itemID, UsageCount: count}
			return tx.Create(&usage).Error
		}
		if err != nil {
			return err
		}
		usage.UsageCount += count
		return tx.Save(&usage).Error
	})
	if err != nil {
		return fmt.Errorf("stats: record item use (player %d, item %d): %w", playerID, itemID, err)
	}
	return nil
}

// RecordSkillUse is the skill counterpart of RecordItemUse.
func (svc *Service) RecordSkillUse(ctx context.Context, playerID, skillID int64, count int) error {
	if count <= 0 {
		return nil
	}
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statsID, err := statsIDFor(tx, playerID)
		if err != nil {
			return err
		}
		var usage model.SkillUsage
		err = tx.Where("player_stats_id = ? AND skill_id = ?", statsID, skillID).First(&usage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			usage = model.SkillUsage{PlayerStatsID: statsID, SkillID: skillID, UsageCount: count}
			return tx.Create(&usage).Error
		}
		if err != nil {
			return err
		}
		usage.UsageCount += count
		return tx.Save(&usage).Error
	})
	if err != nil {
		return fmt.Errorf("stats: record skill use (player %d, skill %d): %w", playerID, skillID, err)
	}
	return nil
}

func statsIDFor(tx *gorm.DB, playerID int64) (int64, error) {
	var ps model.PlayerStats
	if err := tx.Select("id").Where("player_id = ?", playerID).First(&ps).Error; err != nil {
		return 0, err
	}
	return ps.ID, nil
}
