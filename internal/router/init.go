package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-service-layer/internal/interface/http"
	"github.com/oksasatya/go-service-layer/internal/interface/middleware"
	"github.com/oksasatya/go-service-layer/internal/router/modules"
	"github.com/oksasatya/go-service-layer/pkg/response"
)

// Deps are the constructed components the HTTP modules need.
type Deps struct {
	Users  handlers.UserService
	Search handlers.UserSearcher // optional
	Store  handlers.Pinger
	Logger *logrus.Logger

	Redis          *redis.Client // optional; no rate limiting when nil
	RatePerMinute  int
	Metrics        *middleware.Metrics // optional
	MetricsLimiter bool
}

// InitModules builds every feature module from deps and adds it to the registry.
// It also installs the JSON 404/405 handlers on the engine.
func InitModules(r *Registry, deps Deps) {
	var userLimiter, debugLimiter gin.HandlerFunc
	if deps.Redis != nil && deps.RatePerMinute > 0 {
		userLimiter = middleware.RateLimit(deps.Redis, deps.RatePerMinute, time.Minute, middleware.KeyByIP(), nil, deps.Logger)
		if deps.MetricsLimiter {
			debugLimiter = middleware.RateLimit(deps.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), deps.Logger)
		}
	}

	var metrics http.Handler
	if deps.Metrics != nil {
		metrics = deps.Metrics.Handler()
	}

	r.Add(modules.NewUserModule(handlers.NewUserHandler(deps.Users, deps.Search, deps.Logger), userLimiter))
	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(deps.Store, deps.Logger), metrics, debugLimiter))

	r.Engine.HandleMethodNotAllowed = true
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "No handler found for "+c.Request.Method+" "+c.Request.URL.Path)
	})
	r.Engine.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Request method '"+c.Request.Method+"' is not supported")
	})
}
