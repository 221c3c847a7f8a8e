package service

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/async"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/redis"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsFixture struct {
	store   *memStore
	users   *memAnalytics[model.UserAnalytics]
	posts   *memAnalytics[model.PostAnalytics]
	videos  *memAnalytics[model.VideoAnalytics]
	photos  *memAnalytics[model.PhotoAnalytics]
	clock   *fakeClock
	runner  *inlineRunner
	metrics *metrics.Metrics
	svc     AnalyticsService
}

func newAnalyticsFixture(runner async.Runner) *analyticsFixture {
	f := &analyticsFixture{
		store:   newMemStore(),
		users:   newMemAnalytics(func(r *model.UserAnalytics) uint64 { return r.UserID }),
		posts:   newMemAnalytics(func(r *model.PostAnalytics) uint64 { return r.PostID }),
		videos:  newMemAnalytics(func(r *model.VideoAnalytics) uint64 { return r.VideoID }),
		photos:  newMemAnalytics(func(r *model.PhotoAnalytics) uint64 { return r.PhotoID }),
		clock:   newFakeClock(),
		metrics: metrics.Nop(),
	}
	if runner == nil {
		f.runner = &inlineRunner{}
		runner = f.runner
	}
	f.svc = NewAnalyticsService(AnalyticsRepos{
		Views:          f.store,
		Interactions:   f.store,
		Resources:      f.store,
		Follows:        f.store,
		UserAnalytics:  f.users,
		PostAnalytics:  f.posts,
		VideoAnalytics: f.videos,
		PhotoAnalytics: f.photos,
	}, runner, AnalyticsOptions{
		StaleTTL: time.Hour,
		Metrics:  f.metrics,
		Now:      f.clock.Now,
	})
	return f
}

func TestAnalytics_EndToEndPostScenario(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addUser(3)
	f.store.addContent(model.ResourcePost, 12, 3)

	tracker := NewViewTrackerService(f.store, &fixedResolver{}, metrics.Nop(), 60)
	res := tracker.TrackView(context.Background(), &TrackViewReq{
		ResourceType: model.ResourcePost,
		ResourceID:   12,
		OwnerUserID:  3,
		ViewerUserID: uid(7),
	})
	require.True(t, res.Tracked)
	f.store.addInteraction(model.InteractionLike, model.ResourcePost, 12, 3)

	rec, err := f.svc.GetPostAnalytics(context.Background(), 12, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ViewsCount)
	assert.Equal(t, int64(3), rec.LikesCount)
	assert.Equal(t, int64(3), rec.TotalEngagements)
	assert.Equal(t, 300.0, rec.EngagementRate)
	assert.Equal(t, f.clock.Now(), rec.LastCalculatedAt)
}

func TestAnalytics_EngagementRateZeroWithoutViews(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	f.store.addInteraction(model.InteractionLike, model.ResourcePost, 12, 4)
	f.store.addInteraction(model.InteractionReaction, model.ResourcePost, 12, 1)
	f.store.addInteraction(model.InteractionBookmark, model.ResourcePost, 12, 2)

	rec, err := f.svc.CalculatePost(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.ViewsCount)
	assert.Equal(t, int64(5), rec.TotalEngagements)
	assert.Equal(t, int64(2), rec.BookmarksCount)
	assert.Equal(t, 0.0, rec.EngagementRate)
}

func TestEngagementRate(t *testing.T) {
	assert.Equal(t, 0.0, engagementRate(10, 0))
	assert.Equal(t, 300.0, engagementRate(3, 1))
	assert.Equal(t, 33.33, engagementRate(1, 3))
	assert.Equal(t, 12.5, engagementRate(1, 8))
}

func TestAnalytics_FreshRecordIsReturnedFromCache(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourceVideo, 4, 3)
	ctx := context.Background()

	first, err := f.svc.GetVideoAnalytics(ctx, 4, false)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	f.store.addInteraction(model.InteractionLike, model.ResourceVideo, 4, 1)

	second, err := f.svc.GetVideoAnalytics(ctx, 4, false)
	require.NoError(t, err)
	assert.Equal(t, first.LastCalculatedAt, second.LastCalculatedAt)
	assert.Equal(t, int64(0), second.LikesCount)
	assert.Equal(t, 1, f.videos.upsertCount())
	assert.Empty(t, f.runner.names)
}

func TestAnalytics_StaleRecordRefreshesInBackground(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePhoto, 8, 3)
	ctx := context.Background()

	first, err := f.svc.GetPhotoAnalytics(ctx, 8, false)
	require.NoError(t, err)
	calculatedAt := first.LastCalculatedAt

	f.clock.Advance(2 * time.Hour)
	f.store.addInteraction(model.InteractionShare, model.ResourcePhoto, 8, 2)

	stale, err := f.svc.GetPhotoAnalytics(ctx, 8, false)
	require.NoError(t, err)
	assert.Equal(t, calculatedAt, stale.LastCalculatedAt)
	assert.Equal(t, int64(0), stale.SharesCount)
	assert.Equal(t, []string{"analytics-refresh:photo:8"}, f.runner.names)

	refreshed, err := f.svc.GetPhotoAnalytics(ctx, 8, false)
	require.NoError(t, err)
	assert.True(t, refreshed.LastCalculatedAt.After(calculatedAt))
	assert.Equal(t, int64(2), refreshed.SharesCount)
}

func TestAnalytics_StaleRecordOfDeletedEntity(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourceVideo, 4, 3)
	ctx := context.Background()

	_, err := f.svc.GetVideoAnalytics(ctx, 4, false)
	require.NoError(t, err)
	upserts := f.videos.upsertCount()

	delete(f.store.owners[model.ResourceVideo], 4)
	f.clock.Advance(2 * time.Hour)

	for i := 0; i < 3; i++ {
		_, err = f.svc.GetVideoAnalytics(ctx, 4, false)
		assert.ErrorIs(t, err, ErrEntityNotFound)
	}
	assert.Empty(t, f.runner.names)
	assert.Equal(t, upserts, f.videos.upsertCount())
}

func TestAnalytics_StaleRefreshWithWorkerPool(t *testing.T) {
	pool := async.NewPool(2, 8, time.Second)
	defer pool.Shutdown(time.Second)

	f := newAnalyticsFixture(pool)
	f.store.addContent(model.ResourcePost, 12, 3)
	ctx := context.Background()

	first, err := f.svc.GetPostAnalytics(ctx, 12, false)
	require.NoError(t, err)

	f.clock.Advance(61 * time.Minute)
	f.store.addInteraction(model.InteractionComment, model.ResourcePost, 12, 1)

	stale, err := f.svc.GetPostAnalytics(ctx, 12, false)
	require.NoError(t, err)
	assert.Equal(t, first.LastCalculatedAt, stale.LastCalculatedAt)

	assert.Eventually(t, func() bool {
		rec, err := f.posts.Get(ctx, 12)
		return err == nil && rec != nil && rec.LastCalculatedAt.After(first.LastCalculatedAt) && rec.CommentsCount == 1
	}, time.Second, 10*time.Millisecond)
}

func TestAnalytics_BackgroundErrorsAreSwallowed(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	ctx := context.Background()

	first, err := f.svc.GetPostAnalytics(ctx, 12, false)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	f.store.countErr = errors.New("replica lag")

	stale, err := f.svc.GetPostAnalytics(ctx, 12, false)
	require.NoError(t, err)
	assert.Equal(t, first.LastCalculatedAt, stale.LastCalculatedAt)
}

func TestAnalytics_SynchronousErrorsAreReturned(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	f.store.countErr = errors.New("replica lag")

	_, err := f.svc.GetPostAnalytics(context.Background(), 12, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, f.store.countErr)

	f.store.countErr = nil
	f.posts.getErr = errors.New("read failed")
	_, err = f.svc.GetPostAnalytics(context.Background(), 12, false)
	assert.ErrorIs(t, err, f.posts.getErr)
}

func TestAnalytics_ForceRecalculate(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	ctx := context.Background()

	_, err := f.svc.GetPostAnalytics(ctx, 12, false)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	f.store.addInteraction(model.InteractionLike, model.ResourcePost, 12, 1)

	rec, err := f.svc.GetPostAnalytics(ctx, 12, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.LikesCount)
	assert.Equal(t, f.clock.Now(), rec.LastCalculatedAt)
	assert.Equal(t, 2, f.posts.upsertCount())
}

func TestAnalytics_NotFoundAndUnsupported(t *testing.T) {
	f := newAnalyticsFixture(nil)
	ctx := context.Background()

	_, err := f.svc.GetAnalytics(ctx, model.EntityPost, 404, false)
	assert.ErrorIs(t, err, ErrEntityNotFound)
	assert.Equal(t, 0, f.posts.upsertCount())

	_, err = f.svc.GetAnalytics(ctx, model.EntityType("comment"), 1, false)
	assert.ErrorIs(t, err, ErrUnsupportedEntity)

	_, err = f.svc.GetAnalytics(ctx, model.EntityUser, 0, false)
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestAnalytics_UserAggregates(t *testing.T) {
	f := newAnalyticsFixture(nil)
	s := f.store
	s.addUser(3)
	s.addContent(model.ResourcePost, 12, 3)
	s.addContent(model.ResourcePost, 13, 3)
	s.addContent(model.ResourceVideo, 4, 3)
	s.addContent(model.ResourcePhoto, 8, 9)
	s.addInteraction(model.InteractionLike, model.ResourcePost, 12, 2)
	s.addInteraction(model.InteractionLike, model.ResourceVideo, 4, 1)
	s.addInteraction(model.InteractionLike, model.ResourcePhoto, 8, 5)
	s.addInteraction(model.InteractionComment, model.ResourcePost, 13, 1)
	s.follows = []model.UserFollow{{FollowerID: 1, FollowingID: 3}, {FollowerID: 2, FollowingID: 3}, {FollowerID: 3, FollowingID: 9}}

	tracker := NewViewTrackerService(s, &fixedResolver{}, nil, 60)
	tracker.TrackView(context.Background(), &TrackViewReq{ResourceType: model.ResourceProfile, ResourceID: 3, OwnerUserID: 3, ViewerUserID: uid(1)})
	tracker.TrackView(context.Background(), &TrackViewReq{ResourceType: model.ResourcePost, ResourceID: 12, OwnerUserID: 3, ViewerUserID: uid(1)})
	tracker.TrackView(context.Background(), &TrackViewReq{ResourceType: model.ResourceVideo, ResourceID: 4, OwnerUserID: 3, ViewerUserID: uid(1)})

	v, err := f.svc.GetAnalytics(context.Background(), model.EntityUser, 3, false)
	require.NoError(t, err)
	rec := v.(*model.UserAnalytics)

	assert.Equal(t, int64(1), rec.ViewsCount)
	assert.Equal(t, int64(2), rec.ContentViewsCount)
	assert.Equal(t, int64(2), rec.FollowersCount)
	assert.Equal(t, int64(1), rec.FollowingCount)
	assert.Equal(t, int64(2), rec.PostsCount)
	assert.Equal(t, int64(1), rec.VideosCount)
	assert.Equal(t, int64(0), rec.PhotosCount)
	assert.Equal(t, int64(3), rec.LikesCount)
	assert.Equal(t, int64(1), rec.CommentsCount)
	assert.Equal(t, int64(0), rec.SharesCount)
}

func TestAnalytics_RequestRefreshIncludesOwner(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addUser(3)
	f.store.addContent(model.ResourceVideo, 4, 3)

	f.svc.RequestRefresh(context.Background(), model.EntityVideo, 4)

	assert.Equal(t, []string{
		"analytics-refresh:video:4",
		"analytics-owner-lookup:video:4",
		"analytics-refresh:user:3",
	}, f.runner.names)
	assert.Equal(t, 1, f.videos.upsertCount())
	assert.Equal(t, 1, f.users.upsertCount())
}

func TestAnalytics_RequestRefreshMissingEntityIsSkipped(t *testing.T) {
	f := newAnalyticsFixture(nil)

	f.svc.RequestRefresh(context.Background(), model.EntityPost, 77)
	f.svc.RequestRefresh(context.Background(), model.EntityType("story"), 1)

	assert.Equal(t, 0, f.posts.upsertCount())
	assert.Equal(t, 0, f.users.upsertCount())
}

func TestAnalytics_RequestRefreshQueueFull(t *testing.T) {
	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	f.runner.full = true

	assert.NotPanics(t, func() {
		f.svc.RequestRefresh(context.Background(), model.EntityPost, 12)
	})
	assert.Equal(t, 0, f.posts.upsertCount())
}

func TestAnalytics_RefreshSkippedWhileLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})

	f := newAnalyticsFixture(nil)
	f.store.addContent(model.ResourcePost, 12, 3)
	require.NoError(t, mr.Set(consts.AnalyticsRefreshLock+"post:12", "other-instance"))

	require.NoError(t, f.svc.Recalculate(context.Background(), model.EntityPost, 12))
	assert.Equal(t, 0, f.posts.upsertCount())

	mr.Del(consts.AnalyticsRefreshLock + "post:12")
	require.NoError(t, f.svc.Recalculate(context.Background(), model.EntityPost, 12))
	assert.Equal(t, 1, f.posts.upsertCount())
	assert.False(t, mr.Exists(consts.AnalyticsRefreshLock+"post:12"))
}
