package handler

import (
	"Viewpoint/internal/api/dto"
	"Viewpoint/internal/model"
	"Viewpoint/internal/pkg/response"
	"Viewpoint/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

// GetAnalytics 获取实体聚合指标 /analytics/:entity_type/:id?forceRecalculate=true
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	entityType := model.EntityType(c.Param("entity_type"))
	if !entityType.Valid() {
		response.Error(c, service.ErrUnsupportedEntity)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	force := false
	if raw := c.Query("forceRecalculate"); raw != "" {
		if force, err = strconv.ParseBool(raw); err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
	}

	rec, err := h.analyticsSvc.GetAnalytics(c.Request.Context(), entityType, id, force)
	if err != nil {
		response.Error(c, err)
		return
	}

	data, err := toAnalyticsDTO(rec)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

func toAnalyticsDTO(rec any) (any, error) {
	var dst any
	switch rec.(type) {
	case *model.UserAnalytics:
		dst = &dto.UserAnalyticsDTO{}
	case *model.PostAnalytics:
		dst = &dto.PostAnalyticsDTO{}
	case *model.VideoAnalytics:
		dst = &dto.VideoAnalyticsDTO{}
	case *model.PhotoAnalytics:
		dst = &dto.PhotoAnalyticsDTO{}
	default:
		return nil, service.ErrUnsupportedEntity
	}
	if err := copier.Copy(dst, rec); err != nil {
		return nil, err
	}
	return dst, nil
}
