package wire

import (
	"Viewpoint/internal/api"
	"Viewpoint/internal/api/config"
	"Viewpoint/internal/api/handler"
	"Viewpoint/internal/job"
	"Viewpoint/internal/pkg/async"
	"Viewpoint/internal/pkg/cron"
	"Viewpoint/internal/pkg/geo"
	"Viewpoint/internal/pkg/kafka"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/security"
	"Viewpoint/internal/repository"
	"Viewpoint/internal/service"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Pool         *async.Pool
	GeoResolver  *geo.Resolver
	GeoUpdater   *geo.Updater
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	m, registry := metrics.New()

	// 后台任务池
	pool := async.NewPool(cfg.Analytics.Workers, cfg.Analytics.QueueSize, cfg.Analytics.RefreshTimeout)
	pool.OnDrop = func(name string) {
		kind, _, _ := strings.Cut(name, ":")
		m.BackgroundDroppedTotal.WithLabelValues(kind).Inc()
	}

	// IP 归属地
	resolver := geo.NewResolver(nil, cfg.Geo.CacheSize, cfg.Geo.CacheTTL)
	resolver.OnLookup = func(result string) {
		m.GeoLookupsTotal.WithLabelValues(result).Inc()
	}
	updater := geo.NewUpdater(resolver, cfg.Geo.DownloadURL, cfg.Geo.DBPath)

	viewRepo := repository.NewViewRepo(db)
	interactionRepo := repository.NewInteractionRepo(db)
	resourceRepo := repository.NewResourceRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)

	viewTrackerService := service.NewViewTrackerService(viewRepo, resolver, m, cfg.Analytics.DedupWindowMinutes)
	resourceService := service.NewResourceService(resourceRepo)
	analyticsService := service.NewAnalyticsService(service.AnalyticsRepos{
		Views:          viewRepo,
		Interactions:   interactionRepo,
		Resources:      resourceRepo,
		Follows:        userFollowRepo,
		UserAnalytics:  repository.NewUserAnalyticsRepo(db),
		PostAnalytics:  repository.NewPostAnalyticsRepo(db),
		VideoAnalytics: repository.NewVideoAnalyticsRepo(db),
		PhotoAnalytics: repository.NewPhotoAnalyticsRepo(db),
	}, pool, service.AnalyticsOptions{
		StaleTTL:       cfg.Analytics.StaleTTL,
		RefreshLockTTL: cfg.Analytics.RefreshLockTTL,
		Metrics:        m,
	})

	handlers := &api.HandlersGroup{
		TrackingHandler:  handler.NewTrackingHandler(viewTrackerService, analyticsService, resourceService),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService),
	}

	router := api.SetupRouter(handlers, api.RouterOptions{
		TrustedProxies: cfg.Server.TrustedProxies,
		LogIndex:       cfg.Logstash.Index,
		Verifier:       security.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		Metrics:        metrics.Handler(registry),
	})

	var kafkaMgr *kafka.ConsumerManager
	if cfg.Kafka.Enable {
		var err error
		kafkaMgr, err = kafka.NewConsumerManager(cfg, m)
		if err != nil {
			_ = pool.Shutdown(0)
			return nil, err
		}
	}

	cronMgr := cron.NewCronManager(
		cron.Entry{
			Name: "analytics-dirty-sync",
			Spec: cfg.Analytics.DirtySyncSpec,
			Job:  job.NewAnalyticsRefreshJob(analyticsService, resourceService, m, cfg.Analytics.DirtyLockTTL),
		},
		cron.Entry{
			Name: "geo-update",
			Spec: geoUpdateSpec(cfg.Geo),
			Job:  job.NewGeoUpdateJob(updater),
		},
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Pool:         pool,
		GeoResolver:  resolver,
		GeoUpdater:   updater,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}

// geoUpdateSpec 没有下载地址时不启用定时更新
func geoUpdateSpec(cfg config.GeoConfig) string {
	if cfg.DownloadURL == "" {
		return ""
	}
	return cfg.UpdateSpec
}
