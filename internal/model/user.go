package model

import (
	"time"
)

// User 用户表由账号服务维护，此处只读
type User struct {
	ID        uint64 `gorm:"primaryKey"`
	IsBan     bool   `gorm:"type:tinyint(1);default:0"`
	IsDelete  bool   `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
