package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgoo/authadm/pkg/export"
)

var exportUpload bool

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export platforms and users as a JSON report",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false,
		"upload the report to the configured S3 bucket")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	dir, err := a.NewExporter().Run(ctx)
	if err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	log.WithField("dir", dir).Info("Report written")

	cfg := a.Config()

	if !exportUpload {
		return nil
	}

	if cfg.Export.S3 == nil || !cfg.Export.S3.Enabled {
		return fmt.Errorf("--upload requires export.s3 to be configured and enabled")
	}

	uploader, err := export.NewS3Uploader(log, cfg.Export.S3)
	if err != nil {
		return fmt.Errorf("creating S3 uploader: %w", err)
	}

	if err := uploader.Preflight(ctx); err != nil {
		return fmt.Errorf("S3 preflight failed: %w", err)
	}

	if err := uploader.Upload(ctx, dir); err != nil {
		return fmt.Errorf("uploading report: %w", err)
	}

	log.WithField("bucket", cfg.Export.S3.Bucket).Info("Report uploaded")

	return nil
}
