package model

import (
	"time"
)

// ResourceView 一次浏览记录，写入后不再修改
type ResourceView struct {
	ID           uint64       `gorm:"primaryKey" json:"id"`
	ResourceType ResourceType `gorm:"type:varchar(16);not null;index:idx_view_viewer,priority:1;index:idx_view_ip,priority:1" json:"resourceType"`
	ResourceID   uint64       `gorm:"not null;index:idx_view_viewer,priority:2;index:idx_view_ip,priority:2" json:"resourceId"`
	OwnerUserID  uint64       `gorm:"not null;index:idx_view_owner" json:"ownerUserId"`
	ViewerUserID *uint64      `gorm:"index:idx_view_viewer,priority:3" json:"viewerUserId"`
	IPAddress    *string      `gorm:"type:varchar(45);index:idx_view_ip,priority:3" json:"ipAddress"`
	CountryCode  *string      `gorm:"type:varchar(2)" json:"countryCode"`
	CountryName  *string      `gorm:"type:varchar(64)" json:"countryName"`
	City         *string      `gorm:"type:varchar(128)" json:"city"`
	Region       *string      `gorm:"type:varchar(64)" json:"region"`
	UserAgent    string       `gorm:"type:varchar(512)" json:"userAgent"`
	Referrer     string       `gorm:"type:varchar(1024)" json:"referrer"`
	CreatedAt    time.Time    `gorm:"not null;index:idx_view_viewer,priority:4;index:idx_view_ip,priority:4" json:"createdAt"`
}

func (ResourceView) TableName() string {
	return "resource_views"
}
