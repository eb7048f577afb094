package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/internal/interface/middleware"
)

type EngineOptions struct {
	Logger      *logrus.Logger
	CORSOrigins []string
	AccessLog   bool
	Metrics     *middleware.Metrics
}

// NewEngine builds the gin engine with the global middleware chain.
func NewEngine(o EngineOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(middleware.Recovery(o.Logger))
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware())
	}

	corsCfg := cors.Config{
		AllowOrigins:     o.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	if o.AccessLog {
		r.Use(gin.Logger())
	}
	return r
}
