//go:build wireinject
// +build wireinject

package main

import (
	"hireboard_backend/internal/app"
	"hireboard_backend/internal/application"
	"hireboard_backend/internal/config"
	"hireboard_backend/internal/filestorage"
	"hireboard_backend/internal/firebase"
	"hireboard_backend/internal/job"
	"hireboard_backend/internal/platform/database"
	platformES "hireboard_backend/internal/platform/elasticsearch"
	"hireboard_backend/internal/platform/logger"
	"hireboard_backend/internal/shared"
	"hireboard_backend/internal/user"
	"hireboard_backend/internal/webhook"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform layer
		logger.New,
		provideDatabase,
		firebase.NewFirebaseService,
		platformES.NewClient,
		provideFileStorage,
		wire.Bind(new(application.ResumeStorage), new(*filestorage.FileStorageService)),

		// Repositories
		user.NewGORMRepository,
		job.NewGORMRepository,
		application.NewGORMRepository,

		// Services
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		job.NewService,
		application.NewService,

		// Handlers
		user.NewHandler,
		job.NewHandler,
		application.NewHandler,
		webhook.NewHandler,

		// Application layer
		app.NewServer,
	)
	return nil, nil, nil
}

// provideDatabase opens the GORM connection and hands Wire the cleanup that
// closes it and flushes the logger.
func provideDatabase(cfg *config.Config, zapLogger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		zapLogger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		_ = zapLogger.Sync()
	}
	return db, cleanup, nil
}

func provideFileStorage(cfg *config.Config, zapLogger *zap.Logger) (*filestorage.FileStorageService, error) {
	return filestorage.NewFileStorageService(cfg.ResumeStoragePath, zapLogger)
}
