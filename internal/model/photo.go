package model

import "time"

type Photo struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"not null;index:idx_user_id" json:"user_id"`
	URL       string    `gorm:"type:varchar(512)" json:"url"`
	IsDeleted bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Photo) TableName() string {
	return "photos"
}
