package service

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/async"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/redis"
	"Viewpoint/internal/pkg/util"
	"Viewpoint/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type AnalyticsService interface {
	CalculateUser(ctx context.Context, userID uint64) (*model.UserAnalytics, error)
	CalculatePost(ctx context.Context, postID uint64) (*model.PostAnalytics, error)
	CalculateVideo(ctx context.Context, videoID uint64) (*model.VideoAnalytics, error)
	CalculatePhoto(ctx context.Context, photoID uint64) (*model.PhotoAnalytics, error)

	GetUserAnalytics(ctx context.Context, userID uint64, forceRecalculate bool) (*model.UserAnalytics, error)
	GetPostAnalytics(ctx context.Context, postID uint64, forceRecalculate bool) (*model.PostAnalytics, error)
	GetVideoAnalytics(ctx context.Context, videoID uint64, forceRecalculate bool) (*model.VideoAnalytics, error)
	GetPhotoAnalytics(ctx context.Context, photoID uint64, forceRecalculate bool) (*model.PhotoAnalytics, error)

	GetAnalytics(ctx context.Context, entityType model.EntityType, id uint64, forceRecalculate bool) (any, error)
	Recalculate(ctx context.Context, entityType model.EntityType, id uint64) error
	RequestRefresh(ctx context.Context, entityType model.EntityType, id uint64)
}

// AnalyticsRepos 聚合计算依赖的存储
type AnalyticsRepos struct {
	Views          repository.ViewRepo
	Interactions   repository.InteractionRepo
	Resources      repository.ResourceRepo
	Follows        repository.UserFollowRepo
	UserAnalytics  repository.UserAnalyticsRepo
	PostAnalytics  repository.PostAnalyticsRepo
	VideoAnalytics repository.VideoAnalyticsRepo
	PhotoAnalytics repository.PhotoAnalyticsRepo
}

type AnalyticsOptions struct {
	StaleTTL       time.Duration
	RefreshLockTTL time.Duration
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

type analyticsServiceImpl struct {
	repos    AnalyticsRepos
	runner   async.Runner
	staleTTL time.Duration
	lockTTL  time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time

	group   singleflight.Group
	pending sync.Map
}

func NewAnalyticsService(repos AnalyticsRepos, runner async.Runner, opts AnalyticsOptions) AnalyticsService {
	s := &analyticsServiceImpl{
		repos:    repos,
		runner:   runner,
		staleTTL: opts.StaleTTL,
		lockTTL:  opts.RefreshLockTTL,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.staleTTL <= 0 {
		s.staleTTL = time.Hour
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 30 * time.Second
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *analyticsServiceImpl) CalculateUser(ctx context.Context, userID uint64) (*model.UserAnalytics, error) {
	rec := &model.UserAnalytics{UserID: userID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rec.ViewsCount, err = s.repos.Views.CountByResource(gCtx, model.ResourceProfile, userID)
		return
	})
	g.Go(func() (err error) {
		rec.ContentViewsCount, err = s.repos.Views.CountContentViewsByOwner(gCtx, userID)
		return
	})
	g.Go(func() (err error) {
		rec.FollowersCount, err = s.repos.Follows.GetUserFollowerCount(gCtx, userID)
		return
	})
	g.Go(func() (err error) {
		rec.FollowingCount, err = s.repos.Follows.GetUserFollowingCount(gCtx, userID)
		return
	})
	g.Go(func() (err error) {
		rec.PostsCount, err = s.repos.Resources.CountContentByOwner(gCtx, model.ResourcePost, userID)
		return
	})
	g.Go(func() (err error) {
		rec.VideosCount, err = s.repos.Resources.CountContentByOwner(gCtx, model.ResourceVideo, userID)
		return
	})
	g.Go(func() (err error) {
		rec.PhotosCount, err = s.repos.Resources.CountContentByOwner(gCtx, model.ResourcePhoto, userID)
		return
	})
	g.Go(func() (err error) {
		rec.LikesCount, err = s.repos.Interactions.CountReceivedByOwner(gCtx, model.InteractionLike, userID)
		return
	})
	g.Go(func() (err error) {
		rec.CommentsCount, err = s.repos.Interactions.CountReceivedByOwner(gCtx, model.InteractionComment, userID)
		return
	})
	g.Go(func() (err error) {
		rec.SharesCount, err = s.repos.Interactions.CountReceivedByOwner(gCtx, model.InteractionShare, userID)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "count user %d", userID)
	}

	rec.LastCalculatedAt = s.now()
	if err := s.repos.UserAnalytics.Upsert(ctx, rec); err != nil {
		return nil, errors.Wrapf(err, "save user analytics %d", userID)
	}
	return rec, nil
}

func (s *analyticsServiceImpl) CalculatePost(ctx context.Context, postID uint64) (*model.PostAnalytics, error) {
	rec := &model.PostAnalytics{PostID: postID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rec.ViewsCount, err = s.repos.Views.CountByResource(gCtx, model.ResourcePost, postID)
		return
	})
	s.countTarget(gCtx, g, &rec.LikesCount, model.InteractionLike, model.ResourcePost, postID)
	s.countTarget(gCtx, g, &rec.CommentsCount, model.InteractionComment, model.ResourcePost, postID)
	s.countTarget(gCtx, g, &rec.SharesCount, model.InteractionShare, model.ResourcePost, postID)
	s.countTarget(gCtx, g, &rec.BookmarksCount, model.InteractionBookmark, model.ResourcePost, postID)
	s.countTarget(gCtx, g, &rec.ReportsCount, model.InteractionReport, model.ResourcePost, postID)
	s.countTarget(gCtx, g, &rec.ReactionsCount, model.InteractionReaction, model.ResourcePost, postID)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "count post %d", postID)
	}

	rec.TotalEngagements = rec.LikesCount + rec.CommentsCount + rec.SharesCount + rec.ReactionsCount
	rec.EngagementRate = engagementRate(rec.TotalEngagements, rec.ViewsCount)
	rec.LastCalculatedAt = s.now()
	if err := s.repos.PostAnalytics.Upsert(ctx, rec); err != nil {
		return nil, errors.Wrapf(err, "save post analytics %d", postID)
	}
	return rec, nil
}

// CalculateVideo 观看时长与完播率暂无数据源，保持为 0
func (s *analyticsServiceImpl) CalculateVideo(ctx context.Context, videoID uint64) (*model.VideoAnalytics, error) {
	rec := &model.VideoAnalytics{VideoID: videoID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rec.ViewsCount, err = s.repos.Views.CountByResource(gCtx, model.ResourceVideo, videoID)
		return
	})
	s.countTarget(gCtx, g, &rec.LikesCount, model.InteractionLike, model.ResourceVideo, videoID)
	s.countTarget(gCtx, g, &rec.CommentsCount, model.InteractionComment, model.ResourceVideo, videoID)
	s.countTarget(gCtx, g, &rec.SharesCount, model.InteractionShare, model.ResourceVideo, videoID)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "count video %d", videoID)
	}

	rec.LastCalculatedAt = s.now()
	if err := s.repos.VideoAnalytics.Upsert(ctx, rec); err != nil {
		return nil, errors.Wrapf(err, "save video analytics %d", videoID)
	}
	return rec, nil
}

func (s *analyticsServiceImpl) CalculatePhoto(ctx context.Context, photoID uint64) (*model.PhotoAnalytics, error) {
	rec := &model.PhotoAnalytics{PhotoID: photoID}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rec.ViewsCount, err = s.repos.Views.CountByResource(gCtx, model.ResourcePhoto, photoID)
		return
	})
	s.countTarget(gCtx, g, &rec.LikesCount, model.InteractionLike, model.ResourcePhoto, photoID)
	s.countTarget(gCtx, g, &rec.CommentsCount, model.InteractionComment, model.ResourcePhoto, photoID)
	s.countTarget(gCtx, g, &rec.SharesCount, model.InteractionShare, model.ResourcePhoto, photoID)
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "count photo %d", photoID)
	}

	rec.LastCalculatedAt = s.now()
	if err := s.repos.PhotoAnalytics.Upsert(ctx, rec); err != nil {
		return nil, errors.Wrapf(err, "save photo analytics %d", photoID)
	}
	return rec, nil
}

func (s *analyticsServiceImpl) countTarget(ctx context.Context, g *errgroup.Group, dst *int64, kind model.InteractionKind, targetType model.ResourceType, targetID uint64) {
	g.Go(func() (err error) {
		*dst, err = s.repos.Interactions.CountByTarget(ctx, kind, targetType, targetID)
		return
	})
}

func (s *analyticsServiceImpl) GetUserAnalytics(ctx context.Context, userID uint64, forceRecalculate bool) (*model.UserAnalytics, error) {
	return getOrRefresh(ctx, s, model.EntityUser, userID, forceRecalculate,
		s.repos.UserAnalytics.Get, s.CalculateUser,
		func(r *model.UserAnalytics) time.Time { return r.LastCalculatedAt })
}

func (s *analyticsServiceImpl) GetPostAnalytics(ctx context.Context, postID uint64, forceRecalculate bool) (*model.PostAnalytics, error) {
	return getOrRefresh(ctx, s, model.EntityPost, postID, forceRecalculate,
		s.repos.PostAnalytics.Get, s.CalculatePost,
		func(r *model.PostAnalytics) time.Time { return r.LastCalculatedAt })
}

func (s *analyticsServiceImpl) GetVideoAnalytics(ctx context.Context, videoID uint64, forceRecalculate bool) (*model.VideoAnalytics, error) {
	return getOrRefresh(ctx, s, model.EntityVideo, videoID, forceRecalculate,
		s.repos.VideoAnalytics.Get, s.CalculateVideo,
		func(r *model.VideoAnalytics) time.Time { return r.LastCalculatedAt })
}

func (s *analyticsServiceImpl) GetPhotoAnalytics(ctx context.Context, photoID uint64, forceRecalculate bool) (*model.PhotoAnalytics, error) {
	return getOrRefresh(ctx, s, model.EntityPhoto, photoID, forceRecalculate,
		s.repos.PhotoAnalytics.Get, s.CalculatePhoto,
		func(r *model.PhotoAnalytics) time.Time { return r.LastCalculatedAt })
}

// getOrRefresh 无记录或强制时同步计算，过期时返回旧值并提交后台刷新
func getOrRefresh[T any](
	ctx context.Context,
	s *analyticsServiceImpl,
	entityType model.EntityType,
	id uint64,
	force bool,
	get func(context.Context, uint64) (*T, error),
	calculate func(context.Context, uint64) (*T, error),
	lastCalculatedAt func(*T) time.Time,
) (*T, error) {
	if !force {
		rec, err := get(ctx, id)
		if err != nil {
			return nil, errors.Wrapf(err, "load %s analytics %d", entityType, id)
		}
		if rec != nil {
			if s.now().Sub(lastCalculatedAt(rec)) < s.staleTTL {
				return rec, nil
			}
			// 实体已删除时旧聚合不再返回，也不再排队刷新
			exists, err := s.repos.Resources.Exists(ctx, entityType, id)
			if err != nil {
				log.WarnContext(ctx, "Check entity before refresh failed", "entity_type", entityType, "id", id, "err", err)
			} else if !exists {
				return nil, ErrEntityNotFound
			}
			s.refreshInBackground(ctx, entityType, id)
			return rec, nil
		}
	}

	exists, err := s.repos.Resources.Exists(ctx, entityType, id)
	if err != nil {
		return nil, errors.Wrapf(err, "check %s %d", entityType, id)
	}
	if !exists {
		return nil, ErrEntityNotFound
	}

	v, err, _ := s.group.Do(refreshKey(entityType, id), func() (any, error) {
		return s.observe(ctx, entityType, func() (any, error) { return calculate(ctx, id) })
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func (s *analyticsServiceImpl) GetAnalytics(ctx context.Context, entityType model.EntityType, id uint64, forceRecalculate bool) (any, error) {
	if id == 0 {
		return nil, ErrParamInvalid
	}
	switch entityType {
	case model.EntityUser:
		return s.GetUserAnalytics(ctx, id, forceRecalculate)
	case model.EntityPost:
		return s.GetPostAnalytics(ctx, id, forceRecalculate)
	case model.EntityVideo:
		return s.GetVideoAnalytics(ctx, id, forceRecalculate)
	case model.EntityPhoto:
		return s.GetPhotoAnalytics(ctx, id, forceRecalculate)
	}
	return nil, ErrUnsupportedEntity
}

// Recalculate 不存在的实体直接跳过
func (s *analyticsServiceImpl) Recalculate(ctx context.Context, entityType model.EntityType, id uint64) error {
	if !entityType.Valid() {
		return ErrUnsupportedEntity
	}
	exists, err := s.repos.Resources.Exists(ctx, entityType, id)
	if err != nil {
		return errors.Wrapf(err, "check %s %d", entityType, id)
	}
	if !exists {
		s.metrics.RecomputeTotal.WithLabelValues(string(entityType), metrics.ResultNotFound).Inc()
		return nil
	}
	return s.refreshLocked(ctx, entityType, id)
}

// RequestRefresh 提交后台刷新，内容类实体同时刷新其作者，不阻塞调用方
func (s *analyticsServiceImpl) RequestRefresh(ctx context.Context, entityType model.EntityType, id uint64) {
	if !entityType.Valid() || id == 0 {
		return
	}
	s.refreshInBackground(ctx, entityType, id)
	if entityType == model.EntityUser {
		return
	}

	s.runner.Go(ctx, "analytics-owner-lookup:"+refreshKey(entityType, id), func(ctx context.Context) error {
		ownerID, found, err := s.repos.Resources.FindOwner(ctx, entityType.ResourceType(), id)
		if err != nil {
			return errors.Wrapf(err, "find owner of %s %d", entityType, id)
		}
		if found {
			s.refreshInBackground(ctx, model.EntityUser, ownerID)
		}
		return nil
	})
}

// refreshInBackground 同一实体已在队列中时不重复提交
func (s *analyticsServiceImpl) refreshInBackground(ctx context.Context, entityType model.EntityType, id uint64) {
	key := refreshKey(entityType, id)
	if _, loaded := s.pending.LoadOrStore(key, struct{}{}); loaded {
		return
	}

	submitted := s.runner.Go(ctx, "analytics-refresh:"+key, func(ctx context.Context) error {
		defer s.pending.Delete(key)
		return s.Recalculate(ctx, entityType, id)
	})
	if !submitted {
		s.pending.Delete(key)
	}
}

// refreshLocked 跨实例通过 Redis 锁互斥，抢锁失败视为他人正在计算
func (s *analyticsServiceImpl) refreshLocked(ctx context.Context, entityType model.EntityType, id uint64) error {
	key := refreshKey(entityType, id)

	if redis.Rdb != nil {
		lockKey := consts.AnalyticsRefreshLock + key
		token := uuid.NewString()
		ok, err := redis.TryLock(ctx, lockKey, token, s.lockTTL, 1)
		if err != nil {
			log.WarnContext(ctx, "Acquire refresh lock failed, computing anyway", "key", key, "err", err)
		} else if !ok {
			s.metrics.RecomputeTotal.WithLabelValues(string(entityType), metrics.ResultSkipped).Inc()
			return nil
		} else {
			defer func() {
				if err := redis.UnLock(context.WithoutCancel(ctx), lockKey, token); err != nil {
					log.WarnContext(ctx, "Release refresh lock failed", "key", key, "err", err)
				}
			}()
		}
	}

	_, err, _ := s.group.Do(key, func() (any, error) {
		return s.observe(ctx, entityType, func() (any, error) {
			return s.calculate(ctx, entityType, id)
		})
	})
	return err
}

func (s *analyticsServiceImpl) calculate(ctx context.Context, entityType model.EntityType, id uint64) (any, error) {
	switch entityType {
	case model.EntityUser:
		return s.CalculateUser(ctx, id)
	case model.EntityPost:
		return s.CalculatePost(ctx, id)
	case model.EntityVideo:
		return s.CalculateVideo(ctx, id)
	case model.EntityPhoto:
		return s.CalculatePhoto(ctx, id)
	}
	return nil, ErrUnsupportedEntity
}

func (s *analyticsServiceImpl) observe(ctx context.Context, entityType model.EntityType, fn func() (any, error)) (any, error) {
	start := time.Now()
	v, err := fn()
	s.metrics.RecomputeDuration.WithLabelValues(string(entityType)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecomputeTotal.WithLabelValues(string(entityType), metrics.ResultError).Inc()
		log.ErrorContext(ctx, "Recalculate analytics failed", "entity_type", entityType, "err", err)
		return nil, err
	}
	s.metrics.RecomputeTotal.WithLabelValues(string(entityType), metrics.ResultOK).Inc()
	return v, nil
}

func refreshKey(entityType model.EntityType, id uint64) string {
	return fmt.Sprintf("%s:%d", entityType, id)
}

// engagementRate 互动数占浏览数的百分比，无浏览时为 0
func engagementRate(engagements, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return util.Round2(float64(engagements) / float64(views) * 100)
}
