package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"anonrelay/service/ratelimit"
)

func newRouter(t *testing.T, limiter *ratelimit.PresetLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doRequest(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_HeadersAndRejection(t *testing.T) {
	req := require.New(t)
	local := ratelimit.NewMemoryLimiter(ratelimit.MemoryConf{})
	defer local.Close()
	svc := ratelimit.NewService(nil, local, time.Second)
	r := newRouter(t, ratelimit.NewBurstLimiter(svc))

	for i := 0; i < 5; i++ {
		w := doRequest(r)
		req.Equal(http.StatusOK, w.Code, "request %d within budget", i+1)
		req.Equal("5", w.Header().Get("X-RateLimit-Limit"))
		req.NotEmpty(w.Header().Get("X-RateLimit-Reset"))
	}

	w := doRequest(r)
	req.Equal(http.StatusTooManyRequests, w.Code)
	req.Equal("0", w.Header().Get("X-RateLimit-Remaining"))
	req.NotEmpty(w.Header().Get("Retry-After"))
	req.Contains(w.Body.String(), "retryAfter")
}
