package main

import (
	"context"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/inventory/modules/equipment/services"
)

type importer interface {
	Consolidate(ctx context.Context, in services.ConsolidateInput) (services.Summary, error)
	PeriodicUpdate(ctx context.Context, in services.ReconcileInput) (services.Summary, error)
}

type importOptions struct {
	basePath     string
	absolutePath string
	username     string
	apply        bool
}

func newConsolidateCmd() *cobra.Command {
	opts := importOptions{username: defaultActor()}
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Replace the inventory with the merge of the base and Absolute CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(true); err != nil {
				return err
			}
			return withImporter(cmd.Context(), "consolidate", func(ctx context.Context, imp importer) error {
				return runConsolidate(ctx, imp, opts, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&opts.basePath, "base", "", "Base inventory CSV")
	cmd.Flags().StringVar(&opts.absolutePath, "absolute", "", "Absolute export CSV")
	cmd.Flags().StringVar(&opts.username, "username", opts.username, "Acting username recorded in history and audit logs")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes to DB (default is dry-run)")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	opts := importOptions{username: defaultActor()}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply an Absolute CSV export to the inventory without deleting anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(false); err != nil {
				return err
			}
			return withImporter(cmd.Context(), "reconcile", func(ctx context.Context, imp importer) error {
				return runReconcile(ctx, imp, opts, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&opts.absolutePath, "absolute", "", "Absolute export CSV (required)")
	cmd.Flags().StringVar(&opts.username, "username", opts.username, "Acting username recorded in history and audit logs")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Apply changes to DB (default is dry-run)")
	_ = cmd.MarkFlagRequired("absolute")
	return cmd
}

func (o importOptions) validate(consolidate bool) error {
	if strings.TrimSpace(o.username) == "" {
		return withCode(exitUsage, errors.New("--username is required"))
	}
	if consolidate && strings.TrimSpace(o.basePath) == "" && strings.TrimSpace(o.absolutePath) == "" {
		return withCode(exitUsage, errors.New("at least one of --base or --absolute is required"))
	}
	if !consolidate && strings.TrimSpace(o.absolutePath) == "" {
		return withCode(exitUsage, errors.New("--absolute is required"))
	}
	return nil
}

func withImporter(ctx context.Context, command string, fn func(context.Context, importer) error) error {
	env, err := connect(ctx)
	if err != nil {
		return err
	}
	defer env.Close()
	svc := env.app.Service(services.ImportService{}).(*services.ImportService)
	return fn(env.Context(ctx, command), svc)
}

func runConsolidate(ctx context.Context, imp importer, opts importOptions, out io.Writer) error {
	base, err := readOptionalFile(opts.basePath)
	if err != nil {
		return err
	}
	absolute, err := readOptionalFile(opts.absolutePath)
	if err != nil {
		return err
	}
	summary, err := imp.Consolidate(ctx, services.ConsolidateInput{
		Base:     base,
		Absolute: absolute,
		Actor:    opts.username,
		DryRun:   !opts.apply,
	})
	if err != nil {
		return withCode(importExitCode(err), err)
	}
	return writeJSONLine(out, summary)
}

func runReconcile(ctx context.Context, imp importer, opts importOptions, out io.Writer) error {
	absolute, err := readOptionalFile(opts.absolutePath)
	if err != nil {
		return err
	}
	summary, err := imp.PeriodicUpdate(ctx, services.ReconcileInput{
		Absolute: absolute,
		Actor:    opts.username,
		DryRun:   !opts.apply,
	})
	if err != nil {
		return withCode(importExitCode(err), err)
	}
	return writeJSONLine(out, summary)
}
