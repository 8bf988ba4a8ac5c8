package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthTestRouter(keys []string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", APIKeyAuth(keys), func(c *gin.Context) {
		c.JSON(200, gin.H{"code": 200})
	})
	return r
}

func performAuthRequest(r http.Handler, header, query string) *httptest.ResponseRecorder {
	path := "/protected"
	if query != "" {
		path += "?api_key=" + query
	}
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("X-Api-Key", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyAuth(t *testing.T) {
	r := newAuthTestRouter([]string{"key-a", "key-b"})

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"请求头携带有效密钥", "key-a", "", http.StatusOK},
		{"查询参数携带有效密钥", "", "key-b", http.StatusOK},
		{"请求头优先于查询参数", "key-a", "wrong", http.StatusOK},
		{"无密钥", "", "", http.StatusUnauthorized},
		{"错误密钥", "wrong", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performAuthRequest(r, tt.header, tt.query)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	// 未配置密钥时放行全部请求
	r := newAuthTestRouter(nil)

	w := performAuthRequest(r, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSyncRateLimit(t *testing.T) {
	// 用独立类型名，避免和其他测试共享全局限流器状态
	syncType := SyncType("test_rate_limit")

	r := gin.New()
	r.POST("/sync", SyncRateLimit(syncType, time.Minute), func(c *gin.Context) {
		c.JSON(200, gin.H{"code": 200})
	})

	do := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/sync", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// 首次放行，冷却期内拒绝
	assert.Equal(t, http.StatusOK, do().Code)

	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "retry_after")

	// 重置后恢复
	ResetSyncLimit(syncType)
	assert.Equal(t, http.StatusOK, do().Code)
}

func TestRateLimiter_CheckOnly(t *testing.T) {
	limiter := &SyncRateLimiter{}
	key := "global:checkonly"

	// 从未执行过，CheckOnly 放行且不落状态
	result := limiter.CheckOnly(key, time.Minute)
	assert.True(t, result.Allowed)

	// Check 落状态后，CheckOnly 进入冷却
	assert.True(t, limiter.Check(key, time.Minute).Allowed)

	result = limiter.CheckOnly(key, time.Minute)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
}
