package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/inventory/modules"
	"github.com/iota-uz/inventory/pkg/application"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/configuration"
	"github.com/iota-uz/inventory/pkg/eventbus"
	"github.com/iota-uz/inventory/pkg/logging"
)

// runtimeEnv is a connected pool plus the module registry, the same wiring the server uses.
type runtimeEnv struct {
	pool   *pgxpool.Pool
	app    application.Application
	logger *logrus.Logger
}

func connect(ctx context.Context) (*runtimeEnv, error) {
	conf := configuration.Use()
	logger := logging.ConsoleLogger(conf.LogrusLogLevel())

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		return nil, withCode(exitDB, errors.Wrap(err, "connect"))
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, withCode(exitDB, errors.Wrap(err, "ping"))
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, withCode(exitUsage, errors.Wrap(err, "load modules"))
	}
	return &runtimeEnv{pool: pool, app: app, logger: logger}, nil
}

func (e *runtimeEnv) Close() {
	e.pool.Close()
}

// Context binds the pool and a command-scoped logger the way the HTTP middleware does.
func (e *runtimeEnv) Context(ctx context.Context, command string) context.Context {
	ctx = composables.WithPool(ctx, e.pool)
	return composables.WithLogger(ctx, e.logger.WithField("command", command))
}

// defaultActor is the OS user, so shell runs are attributed without extra flags.
func defaultActor() string {
	if u := strings.TrimSpace(os.Getenv("USER")); u != "" {
		return u
	}
	return strings.TrimSpace(os.Getenv("USERNAME"))
}

// readOptionalFile returns nil for an empty path so the service sees the file as not sent.
func readOptionalFile(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, withCode(exitUsage, errors.Wrapf(err, "read %s", path))
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}
