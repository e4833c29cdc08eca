package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/inventory/modules"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/configuration"
	"github.com/iota-uz/inventory/pkg/constants"
	"github.com/iota-uz/inventory/pkg/eventbus"
	"github.com/iota-uz/inventory/pkg/httpapi"
	"github.com/iota-uz/inventory/pkg/logging"
	"github.com/iota-uz/inventory/pkg/metrics"
	"github.com/iota-uz/inventory/pkg/middleware"
	"github.com/iota-uz/inventory/pkg/migrations"
	"github.com/iota-uz/inventory/pkg/outbox"
	eventbusdispatcher "github.com/iota-uz/inventory/pkg/outbox/dispatchers/eventbus"
	"github.com/iota-uz/inventory/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(logger)
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: bus,
	})
	// Global middleware goes first so module middleware sees the pool, logger and actor.
	app.RegisterMiddleware(
		middleware.Provide(constants.PoolKey, pool),
		middleware.WithLogger(logger, middleware.LoggerOptions{
			RequestIDHeader: conf.RequestIDHeader,
			RealIPHeader:    conf.RealIPHeader,
		}),
		middleware.Cors(conf.Origin),
		middleware.WithActor(conf.ActorHeader),
	)
	if rl := rateLimit(conf, logger); rl != nil {
		app.RegisterMiddleware(rl)
	}
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	runner := migrations.NewRunner(pool, logger)
	if _, err := runner.Up(ctx, app.Migrations().Schemas()); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}
	_ = runner.Close()

	startOutboxRelay(ctx, conf, pool, logger, bus)

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})
	serverInstance := server.NewHTTPServer(app, notFound, notAllowed)
	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(ctx, conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func rateLimit(conf *configuration.Configuration, logger *logrus.Logger) mux.MiddlewareFunc {
	if !conf.RateLimit.Enabled {
		return nil
	}
	store := middleware.NewMemoryStore()
	if conf.RateLimit.Storage == "redis" {
		redisStore, err := middleware.NewRedisStore(conf.RateLimit.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("rate limit: redis store unavailable, falling back to memory")
		} else {
			store = redisStore
		}
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerPeriod: conf.RateLimit.GlobalRPS,
		Period:            time.Second,
		Store:             store,
	})
}

func startOutboxRelay(
	ctx context.Context,
	conf *configuration.Configuration,
	pool *pgxpool.Pool,
	logger *logrus.Logger,
	bus eventbus.EventBus,
) {
	outboxLog := logger.WithField("component", "outbox")
	if !conf.Outbox.RelayEnabled {
		outboxLog.Info("outbox: relay disabled")
		return
	}
	table, err := outbox.ParseIdentifier(conf.Outbox.Table)
	if err != nil {
		outboxLog.WithError(err).Warn("outbox: invalid OUTBOX_TABLE; relay disabled")
		return
	}
	relay, err := outbox.NewRelay(pool, table, eventbusdispatcher.New(bus), outbox.RelayOptions{
		PollInterval: conf.Outbox.RelayPollInterval,
		BatchSize:    conf.Outbox.RelayBatchSize,
		MaxAttempts:  conf.Outbox.RelayMaxAttempts,
		Retention:    conf.Outbox.Retention,
		Logger:       outboxLog.WithField("table", outbox.TableLabel(table)),
	})
	if err != nil {
		outboxLog.WithError(err).Warn("outbox: failed to create relay")
		return
	}
	go func() {
		if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
			outboxLog.WithError(err).Error("outbox: relay stopped")
		}
	}()
}
