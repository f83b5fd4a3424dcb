package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/config"
	"github.com/iliyamo/practice-booking/internal/database"
	"github.com/iliyamo/practice-booking/internal/handler"
	"github.com/iliyamo/practice-booking/internal/jobs"
	"github.com/iliyamo/practice-booking/internal/logging"
	"github.com/iliyamo/practice-booking/internal/mail"
	"github.com/iliyamo/practice-booking/internal/metrics"
	"github.com/iliyamo/practice-booking/internal/middleware"
	"github.com/iliyamo/practice-booking/internal/queue"
	"github.com/iliyamo/practice-booking/internal/repository"
	"github.com/iliyamo/practice-booking/internal/router"
	"github.com/iliyamo/practice-booking/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.Env)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func(c io.Closer) { _ = c.Close() }(closer)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
		return err
	}
	logger.Info().Str("driver", cfg.DB.Driver).Msg("database ready")

	schedule, err := config.LoadSchedule(cfg.ScheduleFile)
	if err != nil {
		return err
	}

	metrics.Register()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable: cache disabled, local rate limiting")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	purger := middleware.NewCachePurger(rdb, cacheCfg.Prefix)

	sender := mail.NewSender(cfg.SMTP, logger)
	notifier := newNotifier(ctx, cfg, sender, logger)

	slots := service.NewSlotService(repository.NewSlotRepo(db), logger, cfg.Location)
	contacts := service.NewContactService(repository.NewContactRepo(db), notifier, logger)

	if cfg.Retention.Enabled {
		go jobs.NewRetention(slots, purger, cfg.Retention.Interval, logger).Run(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(logger.With().Str("component", "http").Logger()))

	cache := middleware.NewRedisCache(cacheCfg, rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e,
		handler.NewPublicSlotHandler(slots, purger, logger),
		handler.NewContactHandler(contacts, logger),
		cache, limit)
	router.RegisterAdmin(e,
		handler.NewAdminAuthHandler(cfg, logger),
		handler.NewAdminSlotHandler(slots, schedule, cfg.Location, purger, logger),
		handler.NewAdminContactHandler(contacts, logger),
		cfg.JWTSecret, limit)

	return serve(ctx, e, ":"+cfg.Port, logger)
}

// newNotifier returns the RabbitMQ publisher and starts its consumer, or
// mails inline when the broker is disabled.
func newNotifier(ctx context.Context, cfg config.Config, sender mail.Sender, logger zerolog.Logger) service.ContactNotifier {
	if !cfg.Broker.Enabled {
		logger.Info().Msg("broker disabled: contact notifications are sent inline")
		return queue.NewInlineNotifier(sender, cfg.SMTP.From, cfg.SMTP.To)
	}
	consumer := queue.NewConsumer(cfg.Broker.URL, cfg.Broker.Queue, sender, cfg.SMTP.From, cfg.SMTP.To, logger)
	go func() { _ = consumer.Run(ctx) }()
	return queue.NewPublisher(cfg.Broker.URL, cfg.Broker.Queue, logger)
}

func serve(ctx context.Context, e *echo.Echo, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
