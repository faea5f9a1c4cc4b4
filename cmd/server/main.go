package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/database"
	"github.com/iliyamo/train-seat-reservation/internal/logger"
	"github.com/iliyamo/train-seat-reservation/internal/payment"
	"github.com/iliyamo/train-seat-reservation/internal/queue"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
	"github.com/iliyamo/train-seat-reservation/internal/router"
	"github.com/iliyamo/train-seat-reservation/internal/service"
)

func main() {
	cfg := config.Load()

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		lg.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatalw("migration failed", "error", err)
		}
		lg.Infow("migrations applied")
	}

	events, closeEvents := newPublisher(cfg, lg)
	defer closeEvents()

	engine := booking.NewEngine(
		repository.NewStore(db),
		newPaymentGateway(cfg, lg),
		events,
		lg.Named("booking"),
		booking.Options{
			Window:       booking.Window{Start: cfg.WindowStart, Days: cfg.WindowDays},
			SearchLimit:  cfg.SearchLimit,
			MaxCarNumber: cfg.MaxCarNumber,
		},
	)

	if cfg.EventConsumer {
		go runConsumer(ctx, cfg, lg.Named("consumer"))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warnw("redis unavailable, response cache disabled and rate limiting is per instance")
	} else {
		defer rdb.Close()
	}

	e := router.New(router.Deps{
		Booking:   engine,
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
	}, lg.Named("http"))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			lg.Errorw("shutdown failed", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	lg.Infow("listening", "addr", addr, "env", cfg.Env, "payment", cfg.PaymentProvider, "events", cfg.EventBroker)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatalw("server failed", "error", err)
	}
}

func newPaymentGateway(cfg config.Config, lg *zap.SugaredLogger) booking.PaymentGateway {
	if cfg.PaymentProvider == "stripe" {
		return payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeCurrency, cfg.PaymentTimeout, lg.Named("stripe"))
	}
	return payment.NewHTTPGateway(cfg.PaymentAPI, cfg.PaymentTimeout, lg.Named("payment"))
}

// newPublisher returns the configured event publisher and its close func.
func newPublisher(cfg config.Config, lg *zap.SugaredLogger) (booking.EventPublisher, func()) {
	switch cfg.EventBroker {
	case "rabbitmq":
		return service.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventQueue, lg.Named("amqp")), func() {}
	case "kafka":
		p, err := service.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventQueue, lg.Named("kafka"))
		if err != nil {
			lg.Warnw("kafka producer unavailable, events are dropped", "error", err)
			return booking.NopPublisher{}, func() {}
		}
		return p, func() { _ = p.Close() }
	}
	return booking.NopPublisher{}, func() {}
}

// runConsumer appends every published event to the booking log until ctx is
// cancelled.
func runConsumer(ctx context.Context, cfg config.Config, lg *zap.SugaredLogger) {
	rec := queue.NewRecorder(cfg.EventLogPath)
	switch cfg.EventBroker {
	case "rabbitmq":
		_ = queue.StartAMQPConsumer(ctx, cfg.RabbitMQURL, cfg.EventQueue, rec, lg)
	case "kafka":
		c, err := queue.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroup, cfg.EventQueue, rec, lg)
		if err != nil {
			lg.Errorw("kafka consumer unavailable", "error", err)
			return
		}
		defer c.Close()
		_ = c.Start(ctx)
	default:
		lg.Warnw("EVENT_CONSUMER is set but EVENT_BROKER is none")
	}
}
