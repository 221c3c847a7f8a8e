package repository

import (
	"Viewpoint/internal/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ResourceRepo 资源归属与存在性查询，数据由内容服务维护
type ResourceRepo interface {
	FindOwner(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (uint64, bool, error)
	Exists(ctx context.Context, entityType model.EntityType, id uint64) (bool, error)
	CountContentByOwner(ctx context.Context, resourceType model.ResourceType, ownerID uint64) (int64, error)
}

type resourceRepoImpl struct {
	db *gorm.DB
}

func NewResourceRepo(db *gorm.DB) ResourceRepo {
	return &resourceRepoImpl{db: db}
}

type ownerRow struct {
	ID     uint64
	UserID uint64
}

// FindOwner 返回资源所属用户，个人主页的所属用户即其本身
func (r *resourceRepoImpl) FindOwner(ctx context.Context, resourceType model.ResourceType, resourceID uint64) (uint64, bool, error) {
	db := r.db.WithContext(ctx)

	var rows []ownerRow
	var err error
	switch resourceType {
	case model.ResourceProfile:
		err = db.Model(&model.User{}).
			Select("id, id AS user_id").
			Where("id = ? AND is_delete = ?", resourceID, false).
			Limit(1).
			Scan(&rows).Error
	case model.ResourcePost, model.ResourceVideo, model.ResourcePhoto:
		err = db.Model(contentModel(resourceType)).
			Select("id, user_id").
			Where("id = ? AND is_deleted = ?", resourceID, false).
			Limit(1).
			Scan(&rows).Error
	default:
		return 0, false, fmt.Errorf("unsupported resource type %q", resourceType)
	}
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].UserID, true, nil
}

func (r *resourceRepoImpl) Exists(ctx context.Context, entityType model.EntityType, id uint64) (bool, error) {
	_, found, err := r.FindOwner(ctx, entityType.ResourceType(), id)
	return found, err
}

// CountContentByOwner 用户发布的未删除内容数
func (r *resourceRepoImpl) CountContentByOwner(ctx context.Context, resourceType model.ResourceType, ownerID uint64) (int64, error) {
	m := contentModel(resourceType)
	if m == nil {
		return 0, fmt.Errorf("unsupported content type %q", resourceType)
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(m).
		Where("user_id = ? AND is_deleted = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

func contentModel(resourceType model.ResourceType) interface{} {
	switch resourceType {
	case model.ResourcePost:
		return &model.Post{}
	case model.ResourceVideo:
		return &model.Video{}
	case model.ResourcePhoto:
		return &model.Photo{}
	}
	return nil
}
