package service

import (
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/geo"
	"Viewpoint/internal/pkg/metrics"
	"Viewpoint/internal/pkg/util"
	"Viewpoint/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// RequestContext 浏览请求携带的客户端信息
type RequestContext struct {
	ForwardedFor string
	RemoteAddr   string
	UserAgent    string
	Referrer     string
}

type TrackViewReq struct {
	ResourceType  model.ResourceType
	ResourceID    uint64
	OwnerUserID   uint64
	ViewerUserID  *uint64
	Client        RequestContext
	WindowMinutes int
}

type TrackResult struct {
	Tracked bool
	Reason  string
}

// GeoResolver IP 归属地解析
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) geo.Location
}

type ViewTrackerService interface {
	TrackView(ctx context.Context, req *TrackViewReq) *TrackResult
}

type viewTrackerServiceImpl struct {
	viewRepo      repository.ViewRepo
	resolver      GeoResolver
	metrics       *metrics.Metrics
	defaultWindow time.Duration
	now           func() time.Time
}

func NewViewTrackerService(viewRepo repository.ViewRepo, resolver GeoResolver, m *metrics.Metrics, defaultWindowMinutes int) ViewTrackerService {
	if defaultWindowMinutes <= 0 {
		defaultWindowMinutes = consts.DefaultDedupWindowMinutes
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &viewTrackerServiceImpl{
		viewRepo:      viewRepo,
		resolver:      resolver,
		metrics:       m,
		defaultWindow: time.Duration(defaultWindowMinutes) * time.Minute,
		now:           time.Now,
	}
}

// TrackView 记录一次浏览，窗口内同一身份的重复浏览不计，存储异常只记录日志
func (s *viewTrackerServiceImpl) TrackView(ctx context.Context, req *TrackViewReq) *TrackResult {
	ip := util.ClientIP(req.Client.ForwardedFor, req.Client.RemoteAddr)
	loc := s.resolver.Resolve(ctx, ip)

	window := s.defaultWindow
	if req.WindowMinutes > 0 {
		window = time.Duration(min(req.WindowMinutes, consts.MaxDedupWindowMinutes)) * time.Minute
	}
	now := s.now()
	since := now.Add(-window)

	var existing *model.ResourceView
	var err error
	switch {
	case req.ViewerUserID != nil && *req.ViewerUserID > 0:
		existing, err = s.viewRepo.FindRecentByViewer(ctx, req.ResourceType, req.ResourceID, *req.ViewerUserID, since)
	case ip != "":
		existing, err = s.viewRepo.FindRecentByIP(ctx, req.ResourceType, req.ResourceID, ip, since)
	}
	if err != nil {
		return s.failed(ctx, req, err)
	}
	if existing != nil {
		s.metrics.ViewsTotal.WithLabelValues(string(req.ResourceType), metrics.OutcomeDuplicate).Inc()
		return &TrackResult{Tracked: false, Reason: consts.ReasonDuplicate}
	}

	view := &model.ResourceView{
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		OwnerUserID:  req.OwnerUserID,
		IPAddress:    util.PtrString(ip),
		CountryCode:  loc.CountryCode,
		CountryName:  loc.CountryName,
		City:         loc.City,
		Region:       loc.Region,
		UserAgent:    truncate(req.Client.UserAgent, 512),
		Referrer:     truncate(req.Client.Referrer, 1024),
		CreatedAt:    now,
	}
	if req.ViewerUserID != nil && *req.ViewerUserID > 0 {
		viewerID := *req.ViewerUserID
		view.ViewerUserID = &viewerID
	}

	if err = s.viewRepo.Create(ctx, view); err != nil {
		return s.failed(ctx, req, err)
	}

	s.metrics.ViewsTotal.WithLabelValues(string(req.ResourceType), metrics.OutcomeTracked).Inc()
	return &TrackResult{Tracked: true}
}

func (s *viewTrackerServiceImpl) failed(ctx context.Context, req *TrackViewReq, err error) *TrackResult {
	log.ErrorContext(ctx, "Track view failed",
		"resource_type", req.ResourceType,
		"resource_id", req.ResourceID,
		"err", err)
	s.metrics.ViewsTotal.WithLabelValues(string(req.ResourceType), metrics.OutcomeError).Inc()
	return &TrackResult{Tracked: false, Reason: consts.ReasonSaveFailed}
}

// truncate 按字符截断，与 varchar 长度语义一致
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
