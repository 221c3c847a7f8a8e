package model

import "time"

// UserFollow 关注关系，由社交服务写入
type UserFollow struct {
	FollowerID  uint64    `gorm:"primaryKey;index:idx_follower_id" json:"followerId"`
	FollowingID uint64    `gorm:"primaryKey;index:idx_following_id" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
