package model

import (
	"time"
)

type Comment struct {
	ID         uint64       `gorm:"primaryKey"`
	UserID     uint64       `gorm:"not null" json:"userId"`
	TargetType ResourceType `gorm:"type:varchar(16);not null;index:idx_comment_target,priority:1" json:"targetType"`
	TargetID   uint64       `gorm:"not null;index:idx_comment_target,priority:2" json:"targetId"`
	Content    string       `gorm:"type:varchar(1000);not null" json:"content"`
	IsDeleted  bool         `gorm:"type:tinyint(1);not null;default:0" json:"isDeleted"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}
