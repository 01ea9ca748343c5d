package model

import "time"

// Tier codes, ordered from lowest to highest bracket.
const (
	TierBronze      = "BRONZE"
	TierSilver      = "SILVER"
	TierGold        = "GOLD"
	TierPlatinum    = "PLATINUM"
	TierDiamond     = "DIAMOND"
	TierMaster      = "MASTER"
	TierGrandmaster = "GRANDMASTER"
)

// TierOrder lists all tier codes in declaration order. Aggregations that
// report per-tier results iterate this slice so every tier appears even
// when it holds no players.
var TierOrder = []string{
	TierBronze,
	TierSilver,
	TierGold,
	TierPlatinum,
	TierDiamond,
	TierMaster,
	TierGrandmaster,
}

// ValidTier reports whether code is one of the seven tier codes.
func ValidTier(code string) bool {
	for _, t := range TierOrder {
		if t == code {
			return true
		}
	}
	return false
}

// Player level bounds.
const (
	MinLevel = 1
	MaxLevel = 100
)

// Player is a game account ranked on the leaderboard.
type Player struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname     string    `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	Level        int       `gorm:"not null" json:"level"`
	Tier         string    `gorm:"size:20;index:idx_player_tier;not null" json:"tier"`
	RankingScore int       `gorm:"default:0;index:idx_ranking_score" json:"ranking_score"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Stats *PlayerStats `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE" json:"stats,omitempty"`
}
