// Package server initializes and runs the identity server: it loads
// configuration, opens the database, applies migrations, wires the services,
// and serves the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/isaidso/auth/internal/logging"
	"github.com/isaidso/auth/internal/server/blob"
	"github.com/isaidso/auth/internal/server/config"
	"github.com/isaidso/auth/internal/server/httpapi"
	"github.com/isaidso/auth/internal/server/mail"
	"github.com/isaidso/auth/internal/server/oauth"
	"github.com/isaidso/auth/internal/server/repositories/repomanager"
	"github.com/isaidso/auth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp() (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.LoadConfig()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var notifier mail.Notifier
	if cfg.MailDriver == "smtp" {
		notifier = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		notifier = mail.NewLogMailer(logger)
	}

	blobs := blob.NewS3Store(cfg)
	provider := oauth.NewGoogleProvider(cfg)

	tokens := services.NewTokenService(db, rm, cfg)
	identity := services.NewIdentityService(db, rm, cfg, blobs)
	credentials := services.NewCredentialService(db, rm, cfg, notifier, tokens)
	devices := services.NewDeviceService(db, rm, logger)

	srv := httpapi.NewServer(cfg, logger, identity, tokens, credentials, devices, provider)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run() {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
