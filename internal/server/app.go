// Package server initializes and runs the ledger service: it opens the
// workbook, wires the optional backup mirror and audit journal, starts the
// HTTP API and drains background work on shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mysociety/internal/logging"
	"github.com/dmitrijs2005/mysociety/internal/server/audit"
	"github.com/dmitrijs2005/mysociety/internal/server/config"
	"github.com/dmitrijs2005/mysociety/internal/server/httpapi"
	"github.com/dmitrijs2005/mysociety/internal/server/notify"
	"github.com/dmitrijs2005/mysociety/internal/server/objectstore"
	"github.com/dmitrijs2005/mysociety/internal/server/users"
	"github.com/dmitrijs2005/mysociety/internal/server/workbook"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	file       *workbook.File
	dispatcher *notify.Dispatcher
	recorder   *audit.Recorder
	db         *sql.DB
	api        *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel)

	app := &App{config: c, logger: logger}

	var err error
	var (
		mirror    workbook.Mirror
		presigner httpapi.Presigner
	)
	if c.S3Bucket != "" {
		store, err := objectstore.New(ctx, objectstore.Config{
			Region:    c.S3Region,
			AccessKey: c.S3RootUser,
			SecretKey: c.S3RootPassword,
			Endpoint:  c.S3BaseEndpoint,
			Bucket:    c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("object store init error: %w", err)
		}
		mirror, presigner = store, store
		logger.Info(ctx, "backup mirror enabled", "bucket", c.S3Bucket)
	}

	app.file, err = workbook.Open(workbook.Options{
		Path:      c.ExcelFilePath,
		BackupDir: c.BackupDir,
		Mirror:    mirror,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("workbook init error: %w", err)
	}

	app.dispatcher = notify.FromConfig(notify.Config{
		Provider: c.NotifyProvider,
		From:     c.TwilioWhatsAppFrom,
		To:       c.NotifyRecipient(),
		Twilio: notify.TwilioConfig{
			AccountSID: c.TwilioAccountSID,
			AuthToken:  c.TwilioAuthToken,
			BaseURL:    c.TwilioBaseURL,
		},
		RetryBase:  c.NotifyRetryBase,
		MaxRetries: c.NotifyMaxRetries,
	}, logger)

	var (
		journal  audit.Journal = audit.NopJournal{}
		auditLog httpapi.AuditLog
	)
	if c.DatabaseDSN != "" {
		app.db, err = audit.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pj := audit.NewPostgresJournal(app.db)
		journal, auditLog = pj, pj
		logger.Info(ctx, "audit journal enabled")
	}
	app.recorder = audit.NewRecorder(journal, logger)

	dir, err := users.NewDirectory(c.AccountsOrDev())
	if err != nil {
		return nil, fmt.Errorf("user directory error: %w", err)
	}
	if len(c.Users) == 0 {
		logger.Warn(ctx, "no users configured, using development accounts")
	}
	us := users.NewService(dir, c.SecretKey, c.AccessTokenValidityDuration)

	app.api = httpapi.New(httpapi.Deps{
		Auth:           us,
		Expenses:       workbook.Expenses(app.file),
		Payments:       workbook.Payments(app.file),
		Archive:        app.file,
		Announcers:     []httpapi.Announcer{app.dispatcher, app.recorder},
		Presigner:      presigner,
		Audit:          auditLog,
		AllowedOrigins: c.AllowedOrigins,
		RateLimit:      httpapi.RateLimit{Requests: c.RateLimitMaxRequests, Window: c.RateLimitWindow},
		Logger:         logger,
	})

	return app, nil
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until ctx is done, then waits
// for pending notifications, journal writes and mirror uploads.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...",
		"workbook", app.config.ExcelFilePath,
		"notify_provider", app.config.NotifyProvider,
	)

	err := app.api.Run(ctx, app.config.HTTPAddr, app.config.ShutdownTimeout)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancel()

	if drainErr := app.drain(shutdownCtx); drainErr != nil {
		app.logger.Error(shutdownCtx, "shutdown incomplete", "error", drainErr)
		err = errors.Join(err, drainErr)
	}

	app.logger.Info(shutdownCtx, "App stopped")
	return err
}

func (app *App) drain(ctx context.Context) error {
	var g errgroup.Group

	g.Go(func() error { return app.dispatcher.Close(ctx) })
	g.Go(func() error { return app.recorder.Close(ctx) })
	g.Go(func() error { return app.file.Close(ctx) })

	err := g.Wait()

	if app.db != nil {
		err = errors.Join(err, app.db.Close())
	}
	return err
}
