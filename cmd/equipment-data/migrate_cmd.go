package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/inventory/pkg/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the embedded schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations of every module",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			runner := migrations.NewRunner(env.pool, env.logger)
			defer func() { _ = runner.Close() }()

			results, err := runner.Up(cmd.Context(), env.app.Migrations().Schemas())
			if err != nil {
				return withCode(exitDBWrite, errors.Wrap(err, "migrate up"))
			}
			for _, res := range results {
				if err := writeJSONLine(cmd.OutOrStdout(), res); err != nil {
					return err
				}
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			runner := migrations.NewRunner(env.pool, env.logger)
			defer func() { _ = runner.Close() }()

			statuses, err := runner.Status(cmd.Context(), env.app.Migrations().Schemas())
			if err != nil {
				return withCode(exitDB, errors.Wrap(err, "migrate status"))
			}
			for _, st := range statuses {
				if err := writeJSONLine(cmd.OutOrStdout(), st); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
