package model

import "gorm.io/gorm"

// PlayerStats holds a player's accumulated match statistics.
// WinRate is derived from Wins and TotalGames; it is recomputed by the
// BeforeSave hook on every persist so callers can never store a win rate
// that disagrees with the totals.
type PlayerStats struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID   int64   `gorm:"uniqueIndex;not null" json:"player_id"`
	TotalGames int     `gorm:"default:0" json:"total_games"`
	Wins       int     `gorm:"default:0" json:"wins"`
	Losses     int     `gorm:"default:0" json:"losses"`
	WinRate    float64 `gorm:"default:0" json:"win_rate"`
	PlayTime   int     `gorm:"default:0" json:"play_time"` // minutes

	ItemUsages  []ItemUsage  `gorm:"foreignKey:PlayerStatsID;constraint:OnDelete:CASCADE" json:"item_usages,omitempty"`
	SkillUsages []SkillUsage `gorm:"foreignKey:PlayerStatsID;constraint:OnDelete:CASCADE" json:"skill_usages,omitempty"`
}

// RecalcWinRate recomputes WinRate from Wins and TotalGames and returns it.
// A player with zero games has a win rate of 0.
func (s *PlayerStats) RecalcWinRate() float64 {
	if s.TotalGames > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalGames) * 100
	} else {
		s.WinRate = 0
	}
	return s.WinRate
}

// BeforeSave keeps the stored win rate consistent with the totals on every
// create and update.
func (s *PlayerStats) BeforeSave(*gorm.DB) error {
	s.RecalcWinRate()
	return nil
}
