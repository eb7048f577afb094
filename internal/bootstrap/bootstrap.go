// Package bootstrap builds the long-lived components every command shares
// from the loaded configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-service-layer/config"
	"github.com/oksasatya/go-service-layer/internal/application"
	"github.com/oksasatya/go-service-layer/internal/domain/notification"
	"github.com/oksasatya/go-service-layer/internal/domain/repository"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/go-service-layer/internal/infrastructure/mongo"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/notify"
	pginfra "github.com/oksasatya/go-service-layer/internal/infrastructure/postgres"
	"github.com/oksasatya/go-service-layer/internal/infrastructure/search"
	"github.com/oksasatya/go-service-layer/pkg/helpers"
	mailtpl "github.com/oksasatya/go-service-layer/pkg/mailer/templates"
)

// Store is a user repository that can report its own health.
type Store interface {
	repository.UserRepository
	Ping(ctx context.Context) error
}

type App struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Store    Store
	Notifier notification.Notifier
	Service  *application.Service
	Search   *search.UserIndex // nil when search is disabled
	Redis    *redis.Client     // nil when rate limiting is disabled

	closers []func()
}

// New opens the configured store and optional backends.
// On error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (_ *App, err error) {
	app := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if app.Store, err = app.openStore(ctx); err != nil {
		return nil, err
	}

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch client: %w", err)
		}
		app.Search = search.NewUserIndex(es, cfg.ESUsersIndex)
		if err := app.Search.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch index not ready; search results may be empty")
		}
		app.Store = search.NewIndexingRepository(app.Store, app.Search, logger)
	}

	if app.Notifier, err = app.openNotifier(); err != nil {
		return nil, err
	}

	if cfg.RateLimitEnabled {
		app.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rdb := app.Redis
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Warn("redis unreachable; rate limiter will fail open")
		}
	}

	app.Service = application.NewService(app.Store, app.Notifier, logger)
	return app, nil
}

func (a *App) openStore(ctx context.Context) (Store, error) {
	cfg := a.Config
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongoinfra.NewClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		repo := mongoinfra.NewUserRepository(client.Database(cfg.MongoDatabase), cfg.MongoUsersCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		a.Logger.WithField("database", cfg.MongoDatabase).Info("using mongo user store")
		return repo, nil

	case config.StorePostgres:
		dsn := cfg.PostgresDSN()
		if err := pginfra.RunMigrations(dsn, a.Logger); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, dsn, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.Logger.WithField("database", cfg.DBName).Info("using postgres user store")
		return pginfra.NewUserRepository(pool), nil

	case config.StoreMemory:
		a.Logger.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUserRepository(), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func (a *App) openNotifier() (notification.Notifier, error) {
	cfg := a.Config
	if !cfg.MailSendEnabled {
		return notify.NewLogNotifier(a.Logger), nil
	}
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)
	brand := mailtpl.Brand{AppName: cfg.AppName, CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL}
	return notify.NewQueueNotifier(pub, brand, a.Logger), nil
}

// Close releases everything New opened, newest first.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
