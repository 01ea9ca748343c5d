package model

// Skill type codes.
const (
	SkillTypeActive   = "ACTIVE"
	SkillTypePassive  = "PASSIVE"
	SkillTypeUltimate = "ULTIMATE"
)

// SkillTypes lists the valid skill type codes.
var SkillTypes = []string{SkillTypeActive, SkillTypePassive, SkillTypeUltimate}

// Skill is shared reference data; it is not owned by any player.
type Skill struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	SkillType   string `gorm:"size:20;not null" json:"skill_type"`
	Description string `gorm:"type:text" json:"description"`
	Cooldown    int    `gorm:"default:0" json:"cooldown"` // seconds
}
