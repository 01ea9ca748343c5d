package model

import "time"

// ItemUsage records how many times a player has used an item.
// The (player_stats, item) pair is unique: gameplay events increment the
// existing row rather than inserting a new one. LastUsed is bumped on every
// mutation via autoUpdateTime.
type ItemUsage struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerStatsID int64     `gorm:"uniqueIndex:uk_stats_item;index:idx_item_usage_stats,priority:1;not null" json:"player_stats_id"`
	ItemID        int64     `gorm:"uniqueIndex:uk_stats_item;index:idx_item_usage_item,priority:1;not null" json:"item_id"`
	UsageCount    int       `gorm:"default:0;index:idx_item_usage_stats,priority:2;index:idx_item_usage_item,priority:2" json:"usage_count"`
	LastUsed      time.Time `gorm:"autoUpdateTime" json:"last_used"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item,omitempty"`
}

// SkillUsage is the skill counterpart of ItemUsage.
type SkillUsage struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerStatsID int64     `gorm:"uniqueIndex:uk_stats_skill;index:idx_skill_usage_stats,priority:1;not null" json:"player_stats_id"`
	SkillID       int64     `gorm:"uniqueIndex:uk_stats_skill;index:idx_skill_usage_skill,priority:1;not null" json:"skill_id"`
	UsageCount    int       `gorm:"default:0;index:idx_skill_usage_stats,priority:2;index:idx_skill_usage_skill,priority:2" json:"usage_count"`
	LastUsed      time.Time `gorm:"autoUpdateTime" json:"last_used"`

	Skill *Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"skill,omitempty"`
}
