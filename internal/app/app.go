// Package app wires the record store and the read-side services shared by
// the HTTP server and the surveyctl CLI.
package app

import (
	"cardiostent/internal/config"
	"cardiostent/internal/repository"
	"cardiostent/internal/service"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Repo      repository.SubmissionRepo
	Analytics *service.AnalyticsService
	Reports   *service.ReportService

	closers []func()
}

// New opens the configured record store
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	switch cfg.Store.Driver {
	case "mongo":
		db, err := a.connectMongo(ctx, cfg.Store)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Repo = repository.NewMongoSubmissionRepo(db)
	default:
		logger.Info("using file store", zap.String("path", cfg.Store.DataFile))
		a.Repo = repository.NewFileSubmissionRepo(cfg.Store.DataFile)
	}

	a.Analytics = service.NewAnalyticsService(a.Repo, cfg.Analytics.MissingScorePolicy, nil, logger.Named("analytics"))
	a.Reports = service.NewReportService(a.Repo)
	return a, nil
}

// NewExportService builds the export service over the app's store
func (a *App) NewExportService(archive service.ArtifactStore) *service.ExportService {
	return service.NewExportService(a.Repo, archive, nil, a.Logger.Named("export"))
}

func (a *App) connectMongo(ctx context.Context, cfg config.StoreConfig) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(ctx)
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureSubmissionIndexes(ctx, db); err != nil {
		return nil, err
	}
	a.Logger.Info("connected to mongodb", zap.String("db", cfg.MongoDB))
	return db, nil
}

// Close releases the store connection
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
