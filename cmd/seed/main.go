package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-service-layer/config"
	"github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/bootstrap"
	"github.com/oksasatya/go-service-layer/pkg/helpers"
)

var demoUsers = []struct{ Email, Name string }{
	{"john@example.com", "John Doe"},
	{"jane@example.com", "Jane Smith"},
	{"alex@example.com", "Alex Johnson"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialise application")
	}
	defer app.Close()

	for _, d := range demoUsers {
		u, err := app.Service.CreateUser(ctx, d.Email, d.Name)
		switch {
		case errors.Is(err, application.ErrDuplicateEmail):
			fmt.Printf("skipped existing user: email=%s\n", d.Email)
		case err != nil:
			logger.WithError(err).WithField("email", d.Email).Fatal("failed to seed user")
		default:
			fmt.Printf("seeded user: id=%s email=%s name=%s\n", u.ID, u.Email, u.Name)
		}
	}
}
