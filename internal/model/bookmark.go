package model

import (
	"time"
)

type Bookmark struct {
	UserID     uint64       `gorm:"primaryKey" json:"userId"`
	TargetType ResourceType `gorm:"primaryKey;type:varchar(16);index:idx_bookmark_target,priority:1" json:"targetType"`
	TargetID   uint64       `gorm:"primaryKey;index:idx_bookmark_target,priority:2" json:"targetId"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}
