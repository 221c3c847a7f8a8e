package job

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/logger"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/redis"
	"Viewpoint/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

type entityRef struct {
	entityType model.EntityType
	id         uint64
}

// AnalyticsRefreshJob 定时消费 CDC 标记的脏实体并重算聚合
type AnalyticsRefreshJob struct {
	analyticsSvc service.AnalyticsService
	resourceSvc  service.ResourceService
	metrics      *metrics.Metrics
	lockTTL      time.Duration
	timeout      time.Duration
}

func NewAnalyticsRefreshJob(
	analyticsSvc service.AnalyticsService,
	resourceSvc service.ResourceService,
	m *metrics.Metrics,
	lockTTL time.Duration,
) *AnalyticsRefreshJob {
	if m == nil {
		m = metrics.Nop()
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &AnalyticsRefreshJob{
		analyticsSvc: analyticsSvc,
		resourceSvc:  resourceSvc,
		metrics:      m,
		lockTTL:      lockTTL,
		timeout:      lockTTL,
	}
}

func (s *AnalyticsRefreshJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-analytics-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.Drain(ctx); err != nil {
		log.ErrorContext(ctx, "drain analytics dirty set error", "err", err)
	}
}

// Drain 多实例间用全局锁互斥，上次中断遗留的 processing 集合优先处理
func (s *AnalyticsRefreshJob) Drain(ctx context.Context) error {
	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.AnalyticsDirtyLock, token, s.lockTTL, 1)
	if err != nil {
		return err
	}
	if !ok {
		log.InfoContext(ctx, "analytics dirty set is being drained by another instance")
		return nil
	}
	defer func() {
		if err := redis.UnLock(context.WithoutCancel(ctx), consts.AnalyticsDirtyLock, token); err != nil {
			log.WarnContext(ctx, "release analytics dirty lock error", "err", err)
		}
	}()

	processingKey := consts.AnalyticsDirtyKey + consts.ProcessingSuffix
	leftover, err := redis.Exists(ctx, processingKey)
	if err != nil {
		return err
	}
	if !leftover {
		renamed, err := redis.Rename(ctx, consts.AnalyticsDirtyKey, processingKey)
		if err != nil {
			return err
		}
		if !renamed {
			return nil
		}
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		return err
	}

	entities, users := s.partition(ctx, members)
	var failed []string

	for _, e := range entities {
		if err := s.analyticsSvc.Recalculate(ctx, e.entityType, e.id); err != nil {
			log.ErrorContext(ctx, "recalculate analytics error", "entity_type", e.entityType, "id", e.id, "err", err)
			failed = append(failed, e.entityType.Member(e.id))
			continue
		}
		owner, err := s.resourceSvc.FindOwner(ctx, e.entityType.ResourceType(), e.id)
		if err != nil {
			if !errors.Is(err, service.ErrEntityNotFound) {
				log.WarnContext(ctx, "resolve content owner error", "entity_type", e.entityType, "id", e.id, "err", err)
			}
			continue
		}
		users.add(owner)
	}

	for _, uid := range users.ids {
		if err := s.analyticsSvc.Recalculate(ctx, model.EntityUser, uid); err != nil {
			log.ErrorContext(ctx, "recalculate user analytics error", "uid", uid, "err", err)
			failed = append(failed, model.EntityUser.Member(uid))
		}
	}

	// 失败的实体放回脏集合，下一轮重试
	if len(failed) > 0 {
		if err := redis.AddToSet(ctx, consts.AnalyticsDirtyKey, failed...); err != nil {
			return err
		}
	}
	if err := redis.DeleteKey(ctx, processingKey); err != nil {
		return err
	}

	processed := len(entities) + len(users.ids) - len(failed)
	s.metrics.DirtyEntitiesDrainTotal.Add(float64(processed))
	log.InfoContext(ctx, "sync analytics success",
		"content_count", len(entities),
		"user_count", len(users.ids),
		"failed_count", len(failed))
	return nil
}

// partition 把成员拆成内容实体与用户，非法成员直接丢弃
func (s *AnalyticsRefreshJob) partition(ctx context.Context, members []string) ([]entityRef, *userSet) {
	var entities []entityRef
	users := &userSet{seen: make(map[uint64]struct{})}
	for _, member := range members {
		entityType, id, ok := model.ParseEntityMember(member)
		if !ok {
			log.WarnContext(ctx, "invalid analytics dirty member", "member", member)
			continue
		}
		if entityType == model.EntityUser {
			users.add(id)
			continue
		}
		entities = append(entities, entityRef{entityType: entityType, id: id})
	}
	return entities, users
}

type userSet struct {
	seen map[uint64]struct{}
	ids  []uint64
}

func (u *userSet) add(id uint64) {
	if _, ok := u.seen[id]; ok {
		return
	}
	u.seen[id] = struct{}{}
	u.ids = append(u.ids, id)
}
