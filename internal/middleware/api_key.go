package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==================== API Key 认证中间件 ====================

// APIKeyAuth API Key 认证中间件
// 从 X-Api-Key 请求头或 api_key 查询参数取密钥，和配置的名单比对
// 未配置任何密钥时放行全部请求，只打一条警告（本地开发场景）
func APIKeyAuth(keys []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			allowed[key] = true
		}
	}

	if len(allowed) == 0 {
		log.Println("[Auth] 未配置 API Key，接口对所有请求开放")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key == "" {
			key = c.Query("api_key")
		}

		if !allowed[key] {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "无效的 API Key",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
