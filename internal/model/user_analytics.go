package model

import "time"

// UserAnalytics 用户维度的聚合指标
type UserAnalytics struct {
	ID                uint64    `gorm:"primaryKey"`
	UserID            uint64    `gorm:"not null;uniqueIndex:idx_user_analytics_user"`
	ViewsCount        int64     `gorm:"not null;default:0"` // 个人主页浏览
	ContentViewsCount int64     `gorm:"not null;default:0"`
	FollowersCount    int64     `gorm:"not null;default:0"`
	FollowingCount    int64     `gorm:"not null;default:0"`
	PostsCount        int64     `gorm:"not null;default:0"`
	VideosCount       int64     `gorm:"not null;default:0"`
	PhotosCount       int64     `gorm:"not null;default:0"`
	LikesCount        int64     `gorm:"not null;default:0"`
	CommentsCount     int64     `gorm:"not null;default:0"`
	SharesCount       int64     `gorm:"not null;default:0"`
	LastCalculatedAt  time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserAnalytics) TableName() string {
	return "user_analytics"
}
