package middleware

import (
	"Viewpoint/internal/pkg/security"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败或缺失则 UID 为 0，按匿名访客处理
func AuthOptionalMiddleware(verifier *security.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint64(0))

		authHeader := c.GetHeader("Authorization")
		if verifier == nil || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		claims, err := verifier.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err == nil {
			c.Set("user_id", claims.UserID)
		}
		c.Next()
	}
}
