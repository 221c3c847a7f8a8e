package model

import "time"

// Share 转发记录，取消转发即物理删除
type Share struct {
	ID         uint64       `gorm:"primaryKey"`
	UserID     uint64       `gorm:"not null" json:"userId"`
	TargetType ResourceType `gorm:"type:varchar(16);not null;index:idx_share_target,priority:1" json:"targetType"`
	TargetID   uint64       `gorm:"not null;index:idx_share_target,priority:2" json:"targetId"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (Share) TableName() string {
	return "shares"
}
