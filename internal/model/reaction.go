package model

import "time"

// Reaction 表情回应，每人每个目标一种
type Reaction struct {
	UserID       uint64       `gorm:"primaryKey" json:"userId"`
	TargetType   ResourceType `gorm:"primaryKey;type:varchar(16);index:idx_reaction_target,priority:1" json:"targetType"`
	TargetID     uint64       `gorm:"primaryKey;index:idx_reaction_target,priority:2" json:"targetId"`
	ReactionType string       `gorm:"type:varchar(16);not null" json:"reactionType"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (Reaction) TableName() string {
	return "reactions"
}
