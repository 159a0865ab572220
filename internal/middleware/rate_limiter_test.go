package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(config RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(config).RateLimit())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, remoteAddr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitThrottlesClientAfterBurst(t *testing.T) {
	r := rateLimitedRouter(RateLimiterConfig{Rate: 1, Burst: 1})

	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:5000"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	r := rateLimitedRouter(RateLimiterConfig{Rate: 1, Burst: 1})

	// First client exhausts its own bucket.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, "10.0.0.1:5000"))

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.2:5000"))
}

func TestRateLimitAllowsGenerousBurst(t *testing.T) {
	r := rateLimitedRouter(RateLimiterConfig{Rate: 100, Burst: 5})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, "10.0.0.3:5000"))
	}
}
