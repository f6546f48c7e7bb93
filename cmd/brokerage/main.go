package main

import (
	"context"
	"log/slog"
	"os"

	"brokerage/config"
	"brokerage/internal/delivery"
	"brokerage/internal/delivery/api"
	"brokerage/internal/delivery/api/middleware"
	"brokerage/internal/delivery/api/router/handler"
	"brokerage/internal/domain/service"
	"brokerage/internal/infra/auth"
	"brokerage/internal/infra/cache"
	logs "brokerage/internal/infra/log"
	"brokerage/internal/infra/metrics"
	"brokerage/internal/infra/persistence/memory"
	"brokerage/internal/infra/persistence/postgres"
	"brokerage/internal/infra/pubsub"
	"brokerage/internal/infra/qrcode"
	"brokerage/internal/infra/storage"
	"brokerage/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	// The storage driver decides which repository module is wired, so the
	// config is loaded before the graph is built.
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(),
		injectRepo(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			logs.New,
			context.Background,
			fx.Annotate(
				metrics.New,
				fx.As(fx.Self()),
				fx.As(new(service.MetricsRecorder)),
			),
		),
		pubsub.Module,
		storage.Module,
		cache.Module,
	)
}

func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return memory.Module
	}

	return postgres.Module
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewPasswordHasher,
			auth.NewJWTService,
			qrcode.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewPropertyService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewPropertyHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
