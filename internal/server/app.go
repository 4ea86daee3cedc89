// Package server wires storage, credentials, the event bus and the
// transports together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/config"
	"github.com/dmitrijs2005/pointfeed/internal/server/events"
	"github.com/dmitrijs2005/pointfeed/internal/server/httpserver"
	"github.com/dmitrijs2005/pointfeed/internal/server/media"
	"github.com/dmitrijs2005/pointfeed/internal/server/notify"
	"github.com/dmitrijs2005/pointfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointfeed/internal/server/revocation"
	"github.com/dmitrijs2005/pointfeed/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/pointfeed/internal/server/grpc"
)

const (
	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

var openDB = sql.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	sweeper     revocation.Sweeper
	guard       *auth.Guard
	userService *services.UserService
	postService *services.PostService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	revocations, sweeper, err := newRevocationStore(c.RevocationBackend, rm, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	codec := auth.NewCodec([]byte(c.SecretKey))
	guard := auth.NewGuard(codec, revocations, rm.Users(db), logger)
	bus := events.NewBus(c.SubscriberQueueLimit, logger)

	uploader := media.NewS3Uploader(media.S3Options{
		Endpoint:  c.S3BaseEndpoint,
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		MaxSizeKB: c.MediaMaxSizeKB,
	})

	email, sms := newSenders(c, logger)

	us := services.NewUserService(db, rm, c, services.UserDeps{
		Codec:       codec,
		Guard:       guard,
		Revocations: revocations,
		Email:       email,
		SMS:         sms,
	}, logger)
	ps := services.NewPostService(db, rm, uploader, bus, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		sweeper:     sweeper,
		guard:       guard,
		userService: us,
		postService: ps,
	}, nil
}

// newRevocationStore picks the revocation backend named by backend.
func newRevocationStore(backend string, rm repomanager.RepositoryManager, db *sql.DB) (revocation.Store, revocation.Sweeper, error) {
	switch backend {
	case "memory":
		// Issued sessions are still recorded in the tokens table, so its
		// expired rows are swept alongside the in-memory list.
		s := revocation.NewMemoryStore()
		return s, revocation.Sweepers{s, revocation.NewPostgresStore(rm.Tokens(db))}, nil
	case "postgres", "":
		s := revocation.NewCachedStore(revocation.NewPostgresStore(rm.Tokens(db)))
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown revocation backend %q", backend)
	}
}

// newSenders builds the email and SMS senders. Unconfigured channels log
// instead of delivering; configured ones sit behind a circuit breaker.
func newSenders(c *config.Config, logger logging.Logger) (notify.Sender, notify.Sender) {
	var email notify.Sender = notify.LogSender{Channel: "email", Log: logger}
	if c.SMTPHost != "" {
		email = notify.NewBreaker("smtp", notify.NewSMTPSender(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			User:     c.SMTPUser,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
			UseTLS:   c.SMTPPort == 465,
		}), breakerFailures, breakerCooldown, logger)
	}

	var sms notify.Sender = notify.LogSender{Channel: "sms", Log: logger}
	if c.SMSWebhookURL != "" {
		sms = notify.NewBreaker("sms", notify.NewWebhookSender(c.SMSWebhookURL, c.SMSFrom,
			&http.Client{Timeout: 10 * time.Second}), breakerFailures, breakerCooldown, logger)
	}

	return email, sms
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.postService, app.guard)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.guard, app.postService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		revocation.RunSweeper(ctx, app.sweeper, app.config.RevocationSweepInterval, app.logger)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
