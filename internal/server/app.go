// Package server initializes and runs the application: it opens the database,
// applies migrations, wires repositories into services, and starts the HTTP
// server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vkuzmin/dockeeper/internal/logging"
	"github.com/vkuzmin/dockeeper/internal/server/config"
	"github.com/vkuzmin/dockeeper/internal/server/httpapi"
	"github.com/vkuzmin/dockeeper/internal/server/repositories/repomanager"
	"github.com/vkuzmin/dockeeper/internal/server/services"
	"github.com/vkuzmin/dockeeper/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// document bytes stay inline in the database unless object storage is
	// configured
	var blobs storage.BlobStore
	if cfg.S3BaseEndpoint != "" {
		blobs, err = storage.NewS3Store(ctx, storage.S3Options{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
	}

	authService := services.NewAuthService(db, manager, logger, cfg)
	userService := services.NewUserService(db, manager)
	documentService := services.NewDocumentService(db, manager, blobs)

	httpServer := httpapi.NewServer(cfg, logger, authService, userService, documentService)

	return &App{config: cfg, logger: logger, db: db, server: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	err := app.server.Run(ctx)

	if closeErr := app.db.Close(); closeErr != nil {
		app.logger.Error(ctx, "db close error", "error", closeErr.Error())
	}

	return err
}
