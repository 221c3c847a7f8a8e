package model

import "time"

// VideoAnalytics 视频维度的聚合指标，观看时长与完播率暂未采集
type VideoAnalytics struct {
	ID               uint64    `gorm:"primaryKey"`
	VideoID          uint64    `gorm:"not null;uniqueIndex:idx_video_analytics_video"`
	ViewsCount       int64     `gorm:"not null;default:0"`
	LikesCount       int64     `gorm:"not null;default:0"`
	CommentsCount    int64     `gorm:"not null;default:0"`
	SharesCount      int64     `gorm:"not null;default:0"`
	TotalWatchTime   int64     `gorm:"not null;default:0"`
	AverageWatchTime float64   `gorm:"type:decimal(12,2);not null;default:0"`
	CompletionRate   float64   `gorm:"type:decimal(5,2);not null;default:0"`
	LastCalculatedAt time.Time `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (VideoAnalytics) TableName() string {
	return "video_analytics"
}
