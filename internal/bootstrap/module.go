package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"docforge/internal/bootstrap/config"
	"docforge/internal/bootstrap/database"
	"docforge/internal/bootstrap/logging"
	domain "docforge/internal/domain/pipeline"
	cacheinfra "docforge/internal/infrastructure/cache"
	"docforge/internal/infrastructure/generator"
	queueinfra "docforge/internal/infrastructure/queue"
	sqliterepo "docforge/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "docforge/internal/infrastructure/persistence/sqlite/uow"
	"docforge/internal/ports"
	"docforge/internal/usecase/pipeline"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewPipelineRepository,
			fx.As(new(ports.PipelineRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideQueue),
	fx.Provide(provideGenerator),
	fx.Provide(provideService),
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
	return &App{
		Config: cfg,
		DB:     db,
	}
}

// provideQueue connects NATS only when queued dispatch is configured; the
// other modes run on the in-process queue and need no broker.
func provideQueue(lc fx.Lifecycle, cfg config.Config) (ports.JobQueue, error) {
	mode, err := domain.ParseDispatchMode(cfg.Dispatch.Mode)
	if err != nil {
		return nil, err
	}

	if mode == domain.DispatchQueued {
		natsQueue, err := queueinfra.NewNATSQueue(cfg.Queue.URL, cfg.Queue.Subject)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				natsQueue.Close()
				return nil
			},
		})
		return natsQueue, nil
	}

	memQueue := queueinfra.NewMemoryQueue(0)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			memQueue.Close()
			return nil
		},
	})
	return memQueue, nil
}

func provideGenerator(cfg config.Config) (ports.DraftGenerator, error) {
	return generator.NewOpenAIGenerator(cfg.Generator.APIKey, cfg.Generator.Model)
}

func provideService(
	repo ports.PipelineRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	queue ports.JobQueue,
	gen ports.DraftGenerator,
	cfg config.Config,
) (*pipeline.Service, error) {
	mode, err := domain.ParseDispatchMode(cfg.Dispatch.Mode)
	if err != nil {
		return nil, err
	}
	return pipeline.NewService(repo, uow, cache, queue, gen, domain.DispatchPolicy{Mode: mode}), nil
}
