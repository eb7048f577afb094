package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-service-layer/config"
	"github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/bootstrap"
	"github.com/oksasatya/go-service-layer/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-export", cfg.Env)

	if cfg.GCSBucket == "" {
		logger.Fatal("GCS_BUCKET not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise application")
	}
	defer app.Close()

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to init GCS client")
	}
	defer func() { _ = gcsClient.Close() }()

	exporter := application.NewExportService(
		app.Service,
		&helpers.GCSUploader{Client: gcsClient, Bucket: cfg.GCSBucket},
		cfg.ExportPrefix,
		logger,
	)
	loc, n, err := exporter.ExportActiveUsers(ctx)
	if err != nil {
		logger.WithError(err).Fatal("export failed")
	}
	fmt.Printf("exported %d active users to %s\n", n, loc)
}
