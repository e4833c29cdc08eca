// Package migrations applies each module's embedded goose migrations with its own version table.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/inventory/pkg/application"
)

var moduleNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)

type Result struct {
	Module  string
	Version int64
	Source  string
}

type Status struct {
	Module  string
	Version int64
	Source  string
	Applied bool
}

type Runner struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewRunner opens a database/sql handle over the pgx pool for goose.
func NewRunner(pool *pgxpool.Pool, logger *logrus.Logger) *Runner {
	return &Runner{db: stdlib.OpenDBFromPool(pool), logger: logger}
}

func (r *Runner) Close() error {
	return r.db.Close()
}

func versionTable(module string) (string, error) {
	if !moduleNameRe.MatchString(module) {
		return "", fmt.Errorf("invalid module name %q", module)
	}
	return "goose_" + module + "_version", nil
}

func (r *Runner) provider(schema application.Schema) (*goose.Provider, error) {
	table, err := versionTable(schema.Module)
	if err != nil {
		return nil, err
	}
	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return nil, errors.Wrap(err, "goose store")
	}
	p, err := goose.NewProvider("", r.db, schema.FS, goose.WithStore(store))
	if err != nil {
		return nil, errors.Wrapf(err, "goose provider for %s", schema.Module)
	}
	return p, nil
}

// Up applies pending migrations module by module, in registration order.
func (r *Runner) Up(ctx context.Context, schemas []application.Schema) ([]Result, error) {
	var out []Result
	for _, schema := range schemas {
		p, err := r.provider(schema)
		if err != nil {
			return out, err
		}
		results, err := p.Up(ctx)
		if err != nil {
			return out, errors.Wrapf(err, "migrate %s", schema.Module)
		}
		for _, res := range results {
			out = append(out, Result{Module: schema.Module, Version: res.Source.Version, Source: res.Source.Path})
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{
					"module":   schema.Module,
					"version":  res.Source.Version,
					"duration": res.Duration,
				}).Info("migration applied")
			}
		}
	}
	return out, nil
}

func (r *Runner) Status(ctx context.Context, schemas []application.Schema) ([]Status, error) {
	var out []Status
	for _, schema := range schemas {
		p, err := r.provider(schema)
		if err != nil {
			return out, err
		}
		statuses, err := p.Status(ctx)
		if err != nil {
			return out, errors.Wrapf(err, "status %s", schema.Module)
		}
		for _, st := range statuses {
			out = append(out, Status{
				Module:  schema.Module,
				Version: st.Source.Version,
				Source:  st.Source.Path,
				Applied: st.State == goose.StateApplied,
			})
		}
	}
	return out, nil
}
