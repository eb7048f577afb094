package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-service-layer/internal/interface/http"
)

// DebugModule exposes GET /health and, when metrics are on, GET /metrics.
type DebugModule struct {
	Health  *handlers.HealthHandler
	Metrics http.Handler
	Limiter gin.HandlerFunc
}

func NewDebugModule(health *handlers.HealthHandler, metrics http.Handler, limiter gin.HandlerFunc) *DebugModule {
	return &DebugModule{Health: health, Metrics: metrics, Limiter: limiter}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Health)
	if m.Metrics == nil {
		return
	}
	if m.Limiter != nil {
		rg.GET("/metrics", m.Limiter, gin.WrapH(m.Metrics))
		return
	}
	rg.GET("/metrics", gin.WrapH(m.Metrics))
}
