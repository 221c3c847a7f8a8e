package repository

import (
	"Viewpoint/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ViewRepo 浏览记录只支持写入与查询
type ViewRepo interface {
	Create(ctx context.Context, view *model.ResourceView) error
	FindRecentByViewer(ctx context.Context, resourceType model.ResourceType, resourceID, viewerID uint64, since time.Time) (*model.ResourceView, error)
	FindRecentByIP(ctx context.Context, resourceType model.ResourceType, resourceID uint64, ip string, since time.Time) (*model.ResourceView, error)
	CountByResource(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (int64, error)
	CountContentViewsByOwner(ctx context.Context, ownerID uint64) (int64, error)
}

type viewRepoImpl struct {
	db *gorm.DB
}

func NewViewRepo(db *gorm.DB) ViewRepo {
	return &viewRepoImpl{db: db}
}

func (r *viewRepoImpl) Create(ctx context.Context, view *model.ResourceView) error {
	return r.db.WithContext(ctx).Create(view).Error
}

// FindRecentByViewer 窗口内同一登录用户对同一资源的最近一次浏览
func (r *viewRepoImpl) FindRecentByViewer(ctx context.Context, resourceType model.ResourceType, resourceID, viewerID uint64, since time.Time) (*model.ResourceView, error) {
	return findRecent(r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Where("viewer_user_id = ?", viewerID).
		Where("created_at >= ?", since))
}

// FindRecentByIP 窗口内同一 IP 对同一资源的最近一次浏览
func (r *viewRepoImpl) FindRecentByIP(ctx context.Context, resourceType model.ResourceType, resourceID uint64, ip string, since time.Time) (*model.ResourceView, error) {
	return findRecent(r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Where("ip_address = ?", ip).
		Where("created_at >= ?", since))
}

func findRecent(query *gorm.DB) (*model.ResourceView, error) {
	var view model.ResourceView
	err := query.Order("created_at DESC").First(&view).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &view, nil
}

func (r *viewRepoImpl) CountByResource(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ResourceView{}).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Count(&count).Error
	return count, err
}

// CountContentViewsByOwner 用户名下帖子、视频、图片的总浏览量，不含个人主页
func (r *viewRepoImpl) CountContentViewsByOwner(ctx context.Context, ownerID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ResourceView{}).
		Where("owner_user_id = ?", ownerID).
		Where("resource_type IN ?", model.ContentResourceTypes).
		Count(&count).Error
	return count, err
}
