// Package server wires configuration, storage, services and the HTTP
// surface into a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/auth"
	"github.com/dmitrijs2005/portfolio/internal/server/config"
	"github.com/dmitrijs2005/portfolio/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/portfolio/internal/server/services"
	"github.com/dmitrijs2005/portfolio/internal/server/storage"
	"github.com/dmitrijs2005/portfolio/internal/server/upload"
	"github.com/dmitrijs2005/portfolio/internal/server/web"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *web.Server
}

// NewApp opens the database, applies migrations, bootstraps the admin
// account and builds the HTTP server. The returned App owns the database
// handle until Run returns.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	app, err := build(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	users := services.NewUserService(db, rm, logger)
	if err := users.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword); err != nil {
		return nil, fmt.Errorf("admin bootstrap: %w", err)
	}

	store, err := newStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	cs := services.NewContentServices(db, rm, store, logger)

	srv, err := web.NewServer(c.HTTPAddr, c.ShutdownTimeout, web.Deps{
		Users: users,
		Site:  services.NewSiteService(cs),
		Content: web.Content{
			Heroes:       cs.Heroes,
			Projects:     cs.Projects,
			Experiences:  cs.Experiences,
			Educations:   cs.Educations,
			Services:     cs.Services,
			Testimonials: cs.Testimonials,
			TechStack:    cs.TechStack,
		},
		Sessions:           auth.NewSessionManager([]byte(c.SecretKey), c.TrustProxyHeaders),
		Uploads:            upload.NewHandler(store, logger),
		DB:                 db,
		Logger:             logger,
		LoginRatePerMinute: c.LoginRatePerMinute,
		TrustProxyHeaders:  c.TrustProxyHeaders,
	})
	if err != nil {
		return nil, err
	}

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// newStore is a seam so tests can run without object storage.
var newStore = func(ctx context.Context, c *config.Config) (*storage.S3Store, error) {
	return storage.NewS3Store(ctx, storage.Config{
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		BaseEndpoint:  c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
		UsePathStyle:  c.S3UsePathStyle,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives or ctx is canceled.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
