package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "equipment-data",
		Short:         "Equipment inventory import, export and migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newConsolidateCmd())
	cmd.AddCommand(newReconcileCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
