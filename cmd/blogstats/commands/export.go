package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"blogstats/cmd/app"
	"blogstats/cmd/blogstats/output"
	"blogstats/internal/service"
)

var (
	exportOut    string
	exportUpload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every comment with its post and post author as CSV",
	Long: `Export writes one CSV row per comment: post author name and email, post title,
comment content and comment time. Posts are read in pages of BATCH_SIZE.

Examples:
  blogstats export > activity.csv
  blogstats export --out activity.csv
  blogstats export --upload`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportUpload && exportOut != "" {
			return fmt.Errorf("--out and --upload cannot be combined")
		}

		return withApp(cmd, cfg.Batch.Timeout, func(ctx context.Context, c *app.Components) error {
			if exportUpload {
				return runExportUpload(ctx, c.Services.Export)
			}
			return runExportFile(ctx, c.Services.Export)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Upload the export to MinIO instead of writing it locally")
}

// createExportFile opens the --out destination.
var createExportFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func runExportFile(ctx context.Context, svc service.ExportService) error {
	if exportOut == "" {
		_, err := writeExport(ctx, svc, os.Stdout)
		return err
	}

	f, err := createExportFile(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}

	rows, err := writeExport(ctx, svc, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close %s: %w", exportOut, cerr)
	}
	if err != nil {
		return err
	}

	output.Success("Exported %d rows to %s", rows, exportOut)
	return nil
}

func writeExport(ctx context.Context, svc service.ExportService, w io.Writer) (int, error) {
	sink := service.NewCSVSink(w)
	rows, err := svc.ExportUserActivity(ctx, sink)
	if err != nil {
		return 0, err
	}
	if err := sink.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return rows, nil
}

func runExportUpload(ctx context.Context, svc service.ExportService) error {
	objectName, rows, err := svc.ExportToStorage(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(map[string]interface{}{"object": objectName, "rows": rows})
	}
	output.Success("Uploaded %d rows to %s", rows, objectName)
	return nil
}
