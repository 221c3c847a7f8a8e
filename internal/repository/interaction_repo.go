package repository

import (
	"Viewpoint/internal/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// InteractionRepo 互动表的计数查询
type InteractionRepo interface {
	CountByTarget(ctx context.Context, kind model.InteractionKind, targetType model.ResourceType, targetID uint64) (int64, error)
	CountReceivedByOwner(ctx context.Context, kind model.InteractionKind, ownerID uint64) (int64, error)
}

type interactionRepoImpl struct {
	db *gorm.DB
}

func NewInteractionRepo(db *gorm.DB) InteractionRepo {
	return &interactionRepoImpl{db: db}
}

func (r *interactionRepoImpl) table(ctx context.Context, kind model.InteractionKind) (*gorm.DB, error) {
	table := kind.TableName()
	if table == "" {
		return nil, fmt.Errorf("unknown interaction kind %q", kind)
	}
	query := r.db.WithContext(ctx).Table(table)
	if kind.SoftDeleted() {
		query = query.Where("is_deleted = ?", false)
	}
	return query, nil
}

// CountByTarget 某个目标收到的互动数
func (r *interactionRepoImpl) CountByTarget(ctx context.Context, kind model.InteractionKind, targetType model.ResourceType, targetID uint64) (int64, error) {
	query, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = query.
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

// CountReceivedByOwner 用户名下所有未删除内容收到的互动总数
func (r *interactionRepoImpl) CountReceivedByOwner(ctx context.Context, kind model.InteractionKind, ownerID uint64) (int64, error) {
	query, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}

	db := r.db.WithContext(ctx)
	owned := func(m interface{}) *gorm.DB {
		return db.Session(&gorm.Session{NewDB: true}).Model(m).
			Select("id").
			Where("user_id = ? AND is_deleted = ?", ownerID, false)
	}

	var count int64
	err = query.
		Where("((target_type = ? AND target_id IN (?)) OR (target_type = ? AND target_id IN (?)) OR (target_type = ? AND target_id IN (?)))",
			model.ResourcePost, owned(&model.Post{}),
			model.ResourceVideo, owned(&model.Video{}),
			model.ResourcePhoto, owned(&model.Photo{}),
		).
		Count(&count).Error
	return count, err
}
