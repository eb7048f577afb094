package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/memory"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/notify"
	"github.com/oksasatya/go-service-layer/internal/interface/middleware"
	"github.com/oksasatya/go-service-layer/pkg/validation"
)

func newTestEngine(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger, _ := test.NewNullLogger()
	repo := memory.NewUserRepository()
	if deps.Users == nil {
		deps.Users = userapp.NewService(repo, notify.NewLogNotifier(logger), logger)
	}
	if deps.Store == nil {
		deps.Store = repo
	}
	deps.Logger = logger

	engine := NewEngine(EngineOptions{Logger: logger, Metrics: deps.Metrics})
	reg := NewRegistry(engine)
	InitModules(reg, deps)
	reg.RegisterAll()
	return engine
}

func serve(engine http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.10:4000"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoutes_Lifecycle(t *testing.T) {
	engine := newTestEngine(t, Deps{})

	w := serve(engine, http.MethodPost, "/api/users", `{"name":"John Doe","email":"john@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created["id"].(string)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/users/"+id, "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPut, "/api/users/"+id+"/name", `{"name":"J"}`).Code)
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodDelete, "/api/users/"+id, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPut, "/api/users/"+id+"/name", `{"name":"K"}`).Code)

	w = serve(engine, http.MethodGet, "/api/users/active", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(engine, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRoutes_UnknownRouteAndMethod(t *testing.T) {
	engine := newTestEngine(t, Deps{})

	w := serve(engine, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "/api/nothing", body["path"])

	w = serve(engine, http.MethodPatch, "/api/users/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "Method Not Allowed")
}

func TestRoutes_RateLimitAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	engine := newTestEngine(t, Deps{
		Redis:         rdb,
		RatePerMinute: 2,
		Metrics:       middleware.NewMetrics("usersvc"),
	})

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/users/active", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/users/active", "").Code)
	w := serve(engine, http.MethodGet, "/api/users/active", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Too Many Requests"`)

	// health is not limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/health", "").Code)
	}

	w = serve(engine, http.MethodGet, "/api/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `usersvc_http_requests_total{method="GET",route="/api/users/active",status="429"} 1`)
}
