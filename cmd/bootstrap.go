package cmd

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/brickworks/services/production/availability"
	"example.com/brickworks/services/production/config"
	"example.com/brickworks/services/production/eventlog"
	"example.com/brickworks/services/production/internal/cache"
	"example.com/brickworks/services/production/internal/database"
	"example.com/brickworks/services/production/internal/repositories"
	"example.com/brickworks/services/production/internal/services"
	"example.com/brickworks/services/production/internal/tracing"
)

// app holds the wired dependencies shared by the server and worker commands.
type app struct {
	cfg    config.Config
	db     *gorm.DB
	readDB *gorm.DB
	cache  *cache.RedisCache
	tracer tracing.Tracer
	core   *services.Core
}

func buildApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)

	db, readDB, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize cache")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		return nil, err
	}

	core := services.NewCore(
		repositories.NewGormTxRunner(db),
		repositories.NewSnapshotRepository(),
		eventlog.NewAppender(db),
		availability.NewCalculator(readDB, redisCache),
		tracer,
	)

	return &app{
		cfg:    cfg,
		db:     db,
		readDB: readDB,
		cache:  redisCache,
		tracer: tracer,
		core:   core,
	}, nil
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}
