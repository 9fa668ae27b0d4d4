package app

import (
	"context"
	"log"
	"os"
	"time"

	"jobmarket/internal/config"
	"jobmarket/internal/database"
	"jobmarket/internal/database/migration"
	dbpostgres "jobmarket/internal/database/postgres"
	"jobmarket/internal/infrastructure/cache"
	"jobmarket/internal/infrastructure/provider"
	"jobmarket/internal/repository"
	"jobmarket/internal/usecase"
	"jobmarket/internal/ws"
	"jobmarket/migrations"
)

// Container owns every long-lived dependency: config, postgres pool, redis
// adapter, upstream client, the job-search usecase and the websocket hub.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis

	Provider provider.Client
	Jobs     repository.JobRepository
	Search   *usecase.JobSearch

	Hub *ws.Hub
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	runner := migration.Runner{FS: migrations.FS}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)
	hub := ws.NewHub(logger)

	jsearch := provider.NewJSearchClient(cfg.Upstream, logger)
	jobs := repository.NewPostgresJobRepository(db, logger)
	search := usecase.NewJobSearchUsecase(jsearch, jobs, redisCache, ws.NewNotifier(hub), logger)

	return &Container{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Cache:    redisCache,
		Provider: jsearch,
		Jobs:     jobs,
		Search:   search,
		Hub:      hub,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
