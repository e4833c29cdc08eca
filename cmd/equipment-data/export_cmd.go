package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/iota-uz/inventory/modules/equipment/services"
)

type exportResult struct {
	Output  string `json:"output"`
	Records int    `json:"records"`
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current inventory to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(output) == "" {
				return withCode(exitUsage, errors.New("--output is required"))
			}
			env, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			svc := env.app.Service(services.ExportService{}).(*services.ExportService)
			n, err := runExport(env.Context(cmd.Context(), "export"), svc, output)
			if err != nil {
				return err
			}
			return writeJSONLine(cmd.OutOrStdout(), exportResult{Output: output, Records: n})
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Output .xlsx path (required)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(ctx context.Context, svc *services.ExportService, path string) (int, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, withCode(exitUsage, errors.Wrapf(err, "mkdir %s", dir))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, withCode(exitUsage, errors.Wrapf(err, "create %s", path))
	}
	n, err := svc.Export(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, withCode(exitDB, errors.Wrap(err, "export"))
	}
	return n, nil
}
