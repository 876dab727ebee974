package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/quant-board/pkg/api/auth"
	"github.com/LENAX/quant-board/pkg/api/dto"
)

// ContextKeyUser gin上下文中的用户名键
const ContextKeyUser = "auth_user"

// Auth JWT鉴权中间件
// 要求Authorization: Bearer <token>；WebSocket升级请求允许从query取token
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenStr = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenStr == "" {
			// 浏览器WebSocket API无法带自定义header
			tokenStr = c.Query("token")
		}

		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(401, "缺少访问令牌"))
			c.Abort()
			return
		}

		claims, err := auth.Parse(secret, tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(401, "访问令牌无效或已过期"))
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, claims.Username)
		c.Next()
	}
}

// CurrentUser 读取当前请求的用户名
func CurrentUser(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyUser); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
