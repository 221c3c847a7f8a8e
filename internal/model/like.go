package model

import (
	"time"
)

// Like 点赞，target_type 取值同 ResourceType
type Like struct {
	UserID     uint64       `gorm:"primaryKey" json:"userId"`
	TargetType ResourceType `gorm:"primaryKey;type:varchar(16);index:idx_like_target,priority:1" json:"targetType"`
	TargetID   uint64       `gorm:"primaryKey;index:idx_like_target,priority:2" json:"targetId"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}
