package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(r http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.7:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	mr, rdb := newRedis(t)
	r := gin.New()
	r.Use(RealIP(), RateLimit(rdb, 2, time.Minute, KeyByIP(), nil, nil))
	r.GET("/api/users/active", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i, remaining := range []string{"1", "0"} {
		w := do(r, http.MethodGet, "/api/users/active", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, remaining, w.Header().Get("X-RateLimit-Remaining"))
	}

	w := do(r, http.MethodGet, "/api/users/active", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Too Many Requests", body["error"])
	assert.Equal(t, "/api/users/active", body["path"])

	// another client has its own window
	w = do(r, http.MethodGet, "/api/users/active", map[string]string{"X-Real-IP": "198.51.100.1"})
	assert.Equal(t, http.StatusOK, w.Code)

	// window expiry resets the counter
	mr.FastForward(time.Minute + time.Second)
	w = do(r, http.MethodGet, "/api/users/active", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_BypassAndFailOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RealIP(), RateLimit(rdb, 1, time.Minute, KeyByIPAndRoute(), AnyOf(AllowPaths("/api/health"), AllowPrivateIP()), logger))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/health", nil).Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users/1", map[string]string{"X-Forwarded-For": "10.0.0.5, 203.0.113.9"}).Code)
	}

	// route key groups /users/:id
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users/1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/api/users/2", nil).Code)

	mr.Close()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/users/3", nil).Code)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "rate limiter unavailable")
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, time.Minute, KeyByIP(), nil, nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/x", nil).Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/x", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = do(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RealIPKey)) })

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "198.51.100.2", "X-Forwarded-For": "10.0.0.1"}, "198.51.100.2"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.3"}, "198.51.100.3"},
		{"forwarded", map[string]string{"X-Forwarded-For": " 198.51.100.4 , 10.0.0.1"}, "198.51.100.4"},
		{"garbage falls back", map[string]string{"CF-Connecting-IP": "nope"}, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, http.MethodGet, "/x", tt.headers).Body.String())
		})
	}
}

func TestRecovery(t *testing.T) {
	logger, hook := test.NewNullLogger()
	gin.DefaultErrorWriter = io.Discard
	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(logger))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
	assert.Equal(t, "/boom", body["path"])
	assert.Equal(t, "kaboom", hook.LastEntry().Data["panic"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("usersvc")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	do(r, http.MethodGet, "/api/users/1", nil)
	do(r, http.MethodGet, "/api/users/2", nil)
	do(r, http.MethodGet, "/nowhere", nil)

	out := do(r, http.MethodGet, "/metrics", nil).Body.String()
	assert.Contains(t, out, `usersvc_http_requests_total{method="GET",route="/api/users/:id",status="200"} 2`)
	assert.Contains(t, out, `usersvc_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.True(t, strings.Contains(out, "usersvc_http_request_duration_seconds_bucket"))
	assert.Contains(t, out, "go_goroutines")
}
