package model

import "time"

type Report struct {
	ID         uint64       `gorm:"primaryKey"`
	UserID     uint64       `gorm:"not null" json:"userId"`
	TargetType ResourceType `gorm:"type:varchar(16);not null;index:idx_report_target,priority:1" json:"targetType"`
	TargetID   uint64       `gorm:"not null;index:idx_report_target,priority:2" json:"targetId"`
	Reason     string       `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt  time.Time    `json:"createdAt"`
}

func (Report) TableName() string {
	return "reports"
}
