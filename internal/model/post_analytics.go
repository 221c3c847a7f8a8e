package model

import "time"

// PostAnalytics 帖子维度的聚合指标
type PostAnalytics struct {
	ID               uint64    `gorm:"primaryKey"`
	PostID           uint64    `gorm:"not null;uniqueIndex:idx_post_analytics_post"`
	ViewsCount       int64     `gorm:"not null;default:0"`
	LikesCount       int64     `gorm:"not null;default:0"`
	CommentsCount    int64     `gorm:"not null;default:0"`
	SharesCount      int64     `gorm:"not null;default:0"`
	BookmarksCount   int64     `gorm:"not null;default:0"`
	ReportsCount     int64     `gorm:"not null;default:0"`
	ReactionsCount   int64     `gorm:"not null;default:0"`
	TotalEngagements int64     `gorm:"not null;default:0"`
	EngagementRate   float64   `gorm:"type:decimal(12,2);not null;default:0"`
	LastCalculatedAt time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PostAnalytics) TableName() string {
	return "post_analytics"
}
