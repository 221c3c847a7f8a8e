package job

import (
	"Viewpoint/internal/pkg/logger"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// GeoUpdater 刷新 IP 归属地数据集
type GeoUpdater interface {
	Update(ctx context.Context) error
}

// GeoUpdateJob 定期下载新的归属地数据集，失败时继续使用旧数据
type GeoUpdateJob struct {
	updater GeoUpdater
	timeout time.Duration
}

func NewGeoUpdateJob(updater GeoUpdater) *GeoUpdateJob {
	return &GeoUpdateJob{updater: updater, timeout: 10 * time.Minute}
}

func (s *GeoUpdateJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-geo-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.updater.Update(ctx); err != nil {
		log.ErrorContext(ctx, "update geo dataset error", "err", err)
		return
	}
	log.InfoContext(ctx, "geo dataset updated", "elapsed", time.Since(start).String())
}
