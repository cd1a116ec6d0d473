package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"catalogo/internal/bootstrap/config"
	"catalogo/internal/bootstrap/database"
	"catalogo/internal/bootstrap/logging"
	domainmoderation "catalogo/internal/domain/moderation"
	"catalogo/internal/errs"
	cacheinfra "catalogo/internal/infrastructure/cache"
	"catalogo/internal/infrastructure/events"
	gormrepo "catalogo/internal/infrastructure/persistence/gormstore/repository"
	gormuow "catalogo/internal/infrastructure/persistence/gormstore/uow"
	"catalogo/internal/infrastructure/policy"
	"catalogo/internal/ports"
	"catalogo/internal/transport/httpapi"
	"catalogo/internal/usecase/follow"
	"catalogo/internal/usecase/moderation"
	"catalogo/internal/usecase/notification"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			gormuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			gormrepo.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
		fx.Annotate(
			gormrepo.NewFollowRepository,
			fx.As(new(ports.FollowRepository)),
		),
		fx.Annotate(
			gormrepo.NewNotificationRepository,
			fx.As(new(ports.NotificationRepository)),
		),
		gormrepo.NewModerationRepository,
	),
	fx.Provide(provideCache),
	fx.Provide(provideEventPublisher),
	fx.Provide(providePolicySource),
	fx.Provide(notification.NewService),
	fx.Provide(provideModerationService),
	fx.Provide(provideFollowService),
	fx.Provide(provideRouter),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return newApp(cfg, db)
}

func provideCache(lc fx.Lifecycle, ctx context.Context, cfg config.Config, db *gorm.DB) ports.Cache {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Driver)) {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := cacheinfra.NewRedisCache(client, cfg.App.Name)
		lc.Append(fx.Hook{
			OnStart: func(startCtx context.Context) error {
				if err := store.Ping(startCtx); err != nil {
					// The cache is advisory; services fall back to storage on every miss.
					logging.Warn(logCtx, "redis cache unreachable at startup", slog.String("addr", cfg.Redis.Addr), slog.Any("err", errs.Loggable(err)))
				}
				return nil
			},
			OnStop: func(_ context.Context) error {
				return client.Close()
			},
		})
		logging.Info(logCtx, "cache configured", slog.String("driver", "redis"), slog.String("addr", cfg.Redis.Addr))
		return store
	case "sqlite":
		logging.Info(logCtx, "cache configured", slog.String("driver", "sqlite"))
		return cacheinfra.NewSQLiteCache(db)
	default:
		logging.Info(logCtx, "cache disabled")
		return cacheinfra.Noop{}
	}
}

func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	if !strings.EqualFold(strings.TrimSpace(cfg.Events.Driver), "nats") {
		return events.Noop{}, nil
	}

	publisher, conn, err := events.ConnectNATS(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, cfg.App.Name)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return conn.Drain()
		},
	})

	logging.Info(logCtx, "event publisher configured", slog.String("driver", "nats"), slog.String("url", cfg.Events.NATSURL))
	return publisher, nil
}

func providePolicySource(cfg config.Config) ports.PolicySource {
	fallback := domainmoderation.Policy{
		StrikeLimit:            cfg.Moderation.StrikeLimit,
		SuspensionDurationDays: cfg.Moderation.SuspensionDurationDays,
	}
	if strings.TrimSpace(cfg.Moderation.PolicyFile) == "" {
		return policy.Static{Value: fallback}
	}
	return policy.NewTOMLSource(cfg.Moderation.PolicyFile, fallback)
}

type moderationParams struct {
	fx.In

	Users    ports.UserRepository
	Store    *gormrepo.ModerationRepository
	UOW      ports.UnitOfWork
	Policy   ports.PolicySource
	Notifier *notification.Service
	Cache    ports.Cache
	Events   ports.EventPublisher
}

func provideModerationService(p moderationParams) *moderation.Service {
	return moderation.NewService(
		moderation.Repositories{
			Users:   p.Users,
			Reviews: p.Store,
			Reports: p.Store,
			Strikes: p.Store,
			Appeals: p.Store,
		},
		p.UOW,
		p.Policy,
		p.Notifier,
		p.Cache,
		p.Events,
	)
}

type followParams struct {
	fx.In

	Config   config.Config
	Users    ports.UserRepository
	Follows  ports.FollowRepository
	UOW      ports.UnitOfWork
	Notifier *notification.Service
	Cache    ports.Cache
	Events   ports.EventPublisher
}

func provideFollowService(p followParams) *follow.Service {
	return follow.NewService(p.Users, p.Follows, p.UOW, p.Notifier, p.Cache, p.Config.Cache.TTL, p.Events)
}

func provideRouter(cfg config.Config, mod *moderation.Service, fol *follow.Service, notes *notification.Service) http.Handler {
	return httpapi.NewRouter(httpapi.Dependencies{
		Moderation:    mod,
		Follows:       fol,
		Notifications: notes,
		IsModerator:   cfg.Moderation.IsModerator,
		Metrics:       cfg.Metrics.Enabled,
		Timeout:       cfg.HTTP.WriteTimeout,
	})
}
