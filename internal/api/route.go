package api

import (
	"Viewpoint/internal/api/middleware"
	"Viewpoint/internal/pkg/logger"
	"Viewpoint/internal/pkg/security"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterOptions 路由装配所需的外部依赖
type RouterOptions struct {
	TrustedProxies []string
	LogIndex       string
	Verifier       *security.TokenVerifier
	Metrics        http.Handler
}

func SetupRouter(group *HandlersGroup, opts RouterOptions) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(opts.TrustedProxies)

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware("/metrics", "/api/ping"))
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r, opts.LogIndex)

	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		trackingGroup := apiGroup.Group("/tracking")
		trackingGroup.Use(middleware.AuthOptionalMiddleware(opts.Verifier))
		{
			trackingGroup.POST("/resources/:type/:id/view", group.TrackingHandler.TrackResourceView)
			trackingGroup.POST("/profiles/:id/view", group.TrackingHandler.TrackProfileView)
			trackingGroup.POST("/posts/:id/view", group.TrackingHandler.TrackPostView)
			trackingGroup.POST("/videos/:id/view", group.TrackingHandler.TrackVideoView)
			trackingGroup.POST("/photos/:id/view", group.TrackingHandler.TrackPhotoView)
		}

		analyticsGroup := apiGroup.Group("/analytics")
		{
			analyticsGroup.GET("/:entity_type/:id", group.AnalyticsHandler.GetAnalytics)
		}
	}

	return r
}
