package model

import "time"

type PhotoAnalytics struct {
	ID               uint64    `gorm:"primaryKey"`
	PhotoID          uint64    `gorm:"not null;uniqueIndex:idx_photo_analytics_photo"`
	ViewsCount       int64     `gorm:"not null;default:0"`
	LikesCount       int64     `gorm:"not null;default:0"`
	CommentsCount    int64     `gorm:"not null;default:0"`
	SharesCount      int64     `gorm:"not null;default:0"`
	LastCalculatedAt time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PhotoAnalytics) TableName() string {
	return "photo_analytics"
}
