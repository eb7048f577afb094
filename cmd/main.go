package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-service-layer/config"
	"github.com/oksasatya/go-service-layer/internal/bootstrap"
	"github.com/oksasatya/go-service-layer/internal/interface/middleware"
	"github.com/oksasatya/go-service-layer/internal/router"
	"github.com/oksasatya/go-service-layer/pkg/helpers"
	"github.com/oksasatya/go-service-layer/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise application")
	}
	defer app.Close()

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		metrics = middleware.NewMetrics("usersvc")
	}

	r := router.NewEngine(router.EngineOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins(),
		AccessLog:   cfg.HTTPLogEnabled || cfg.IsDevelopment(),
		Metrics:     metrics,
	})

	deps := router.Deps{
		Users:          app.Service,
		Store:          app.Store,
		Logger:         logger,
		Redis:          app.Redis,
		RatePerMinute:  cfg.RateLimitPerMinute,
		Metrics:        metrics,
		MetricsLimiter: true,
	}
	if app.Search != nil {
		deps.Search = app.Search
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, deps)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}
