package handler

import (
	"Viewpoint/internal/api/dto"
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/consts"
	"Viewpoint/internal/pkg/response"
	"Viewpoint/internal/pkg/util"
	"Viewpoint/internal/service"
	"bytes"
	"errors"
	"io"
	log "log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type TrackingHandler struct {
	trackerSvc   service.ViewTrackerService
	analyticsSvc service.AnalyticsService
	resourceSvc  service.ResourceService
}

func NewTrackingHandler(trackerSvc service.ViewTrackerService, analyticsSvc service.AnalyticsService, resourceSvc service.ResourceService) *TrackingHandler {
	return &TrackingHandler{
		trackerSvc:   trackerSvc,
		analyticsSvc: analyticsSvc,
		resourceSvc:  resourceSvc,
	}
}

// TrackResourceView 通用浏览上报 /tracking/resources/:type/:id/view
func (h *TrackingHandler) TrackResourceView(c *gin.Context) {
	h.track(c, model.ResourceType(c.Param("type")))
}

func (h *TrackingHandler) TrackProfileView(c *gin.Context) {
	h.track(c, model.ResourceProfile)
}

func (h *TrackingHandler) TrackPostView(c *gin.Context) {
	h.track(c, model.ResourcePost)
}

func (h *TrackingHandler) TrackVideoView(c *gin.Context) {
	h.track(c, model.ResourceVideo)
}

func (h *TrackingHandler) TrackPhotoView(c *gin.Context) {
	h.track(c, model.ResourcePhoto)
}

func (h *TrackingHandler) track(c *gin.Context, resourceType model.ResourceType) {
	if !resourceType.Valid() {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	resourceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resourceID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var body dto.TrackViewBody
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err = json.Unmarshal(raw, &body); err != nil {
			response.Fail(c, response.BadRequest, "Json错误")
			return
		}
	}
	if err = util.ValidateDTO(&body); err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	ownerID, err := h.resourceSvc.FindOwner(ctx, resourceType, resourceID)
	if err != nil {
		reason := consts.ReasonResourceNotFound
		if !errors.Is(err, service.ErrEntityNotFound) {
			log.ErrorContext(ctx, "Resolve resource owner failed", "resource_type", resourceType, "resource_id", resourceID, "err", err)
			reason = consts.ReasonSaveFailed
		}
		response.Success(c, &dto.TrackViewResp{Success: true, Tracked: false, Reason: reason})
		return
	}

	req := &service.TrackViewReq{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OwnerUserID:  ownerID,
		ViewerUserID: util.PtrUint64(c.GetUint64("user_id")),
		Client: service.RequestContext{
			ForwardedFor: c.GetHeader("X-Forwarded-For"),
			RemoteAddr:   c.Request.RemoteAddr,
			UserAgent:    c.Request.UserAgent(),
			Referrer:     c.Request.Referer(),
		},
		WindowMinutes: body.WindowMinutes,
	}
	result := h.trackerSvc.TrackView(ctx, req)
	if result.Tracked {
		h.analyticsSvc.RequestRefresh(ctx, resourceType.EntityType(), resourceID)
	}

	response.Success(c, &dto.TrackViewResp{
		Success: true,
		Tracked: result.Tracked,
		Reason:  result.Reason,
	})
}
