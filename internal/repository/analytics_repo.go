package repository

import (
	"Viewpoint/internal/model"
	"context"
	"errors"
	"slices"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepo 单一实体类型的聚合记录存取，每个实体至多一行
type AnalyticsRepo[T any] interface {
	Get(ctx context.Context, entityID uint64) (*T, error)
	Upsert(ctx context.Context, record *T) error
}

type (
	UserAnalyticsRepo  = AnalyticsRepo[model.UserAnalytics]
	PostAnalyticsRepo  = AnalyticsRepo[model.PostAnalytics]
	VideoAnalyticsRepo = AnalyticsRepo[model.VideoAnalytics]
	PhotoAnalyticsRepo = AnalyticsRepo[model.PhotoAnalytics]
)

type analyticsRepoImpl[T any] struct {
	db        *gorm.DB
	keyColumn string
	counters  []string
}

func NewUserAnalyticsRepo(db *gorm.DB) UserAnalyticsRepo {
	return &analyticsRepoImpl[model.UserAnalytics]{
		db:        db,
		keyColumn: "user_id",
		counters: []string{
			"views_count", "content_views_count", "followers_count", "following_count",
			"posts_count", "videos_count", "photos_count",
			"likes_count", "comments_count", "shares_count",
		},
	}
}

func NewPostAnalyticsRepo(db *gorm.DB) PostAnalyticsRepo {
	return &analyticsRepoImpl[model.PostAnalytics]{
		db:        db,
		keyColumn: "post_id",
		counters: []string{
			"views_count", "likes_count", "comments_count", "shares_count",
			"bookmarks_count", "reports_count", "reactions_count",
			"total_engagements", "engagement_rate",
		},
	}
}

func NewVideoAnalyticsRepo(db *gorm.DB) VideoAnalyticsRepo {
	return &analyticsRepoImpl[model.VideoAnalytics]{
		db:        db,
		keyColumn: "video_id",
		counters: []string{
			"views_count", "likes_count", "comments_count", "shares_count",
			"total_watch_time", "average_watch_time", "completion_rate",
		},
	}
}

func NewPhotoAnalyticsRepo(db *gorm.DB) PhotoAnalyticsRepo {
	return &analyticsRepoImpl[model.PhotoAnalytics]{
		db:        db,
		keyColumn: "photo_id",
		counters:  []string{"views_count", "likes_count", "comments_count", "shares_count"},
	}
}

// Get 不存在时返回 nil, nil
func (r *analyticsRepoImpl[T]) Get(ctx context.Context, entityID uint64) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).
		Where(r.keyColumn+" = ?", entityID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert 按实体 id 插入或覆盖计数，last_calculated_at 只前进不回退
func (r *analyticsRepoImpl[T]) Upsert(ctx context.Context, record *T) error {
	updates := clause.AssignmentColumns(slices.Concat(r.counters, []string{"updated_at"}))
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "last_calculated_at"},
		Value:  gorm.Expr("GREATEST(last_calculated_at, VALUES(last_calculated_at))"),
	})

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: r.keyColumn}},
		DoUpdates: updates,
	}).Create(record).Error
}
