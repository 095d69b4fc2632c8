package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scriptscope/scriptscope/internal/archive"
	"github.com/scriptscope/scriptscope/pkg/config"
	"github.com/scriptscope/scriptscope/pkg/graph"
)

func newArchiveCmd() *cobra.Command {
	var (
		snapshotPath string
		backend      string
		dir          string
		bucket       string
		region       string
		endpoint     string
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Upload a saved snapshot to blob storage",
		Long:  `Pushes a snapshot JSON file to the configured storage backend (local directory, S3, or GCS) keyed by scan root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd.Context(), archiveOpts{
				snapshotPath: snapshotPath,
				backend:      backend,
				dir:          dir,
				bucket:       bucket,
				region:       region,
				endpoint:     endpoint,
			})
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file to archive (required)")
	cmd.Flags().StringVar(&backend, "backend", "local", "Storage backend: local, s3, or gcs")
	cmd.Flags().StringVar(&dir, "dir", "", "Base directory for the local backend (default: cache dir)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket name for s3/gcs backends")
	cmd.Flags().StringVar(&region, "region", "", "AWS region for the s3 backend")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom S3 endpoint (MinIO etc.)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

type archiveOpts struct {
	snapshotPath string
	backend      string
	dir          string
	bucket       string
	region       string
	endpoint     string
}

func runArchive(ctx context.Context, opts archiveOpts) error {
	snap, err := graph.LoadSnapshot(opts.snapshotPath)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	data, err := os.ReadFile(opts.snapshotPath)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	storage, err := newStorage(ctx, opts)
	if err != nil {
		return err
	}

	slug := config.RootSlug(snap.Root)
	if err := storage.PutSnapshot(ctx, slug, snap.ID, data); err != nil {
		return fmt.Errorf("archiving snapshot: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Archived snapshot %s under %s\n", snap.ID, slug)
	return nil
}

func newStorage(ctx context.Context, opts archiveOpts) (archive.StorageClient, error) {
	switch opts.backend {
	case "local":
		dir := opts.dir
		if dir == "" {
			dir = config.CacheDir("archive")
		}
		return archive.NewLocalStorage(dir), nil
	case "s3":
		if opts.bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the s3 backend")
		}
		return archive.NewS3Storage(ctx, archive.S3Config{
			Bucket:   opts.bucket,
			Region:   opts.region,
			Endpoint: opts.endpoint,
		})
	case "gcs":
		if opts.bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the gcs backend")
		}
		return archive.NewGCSStorage(ctx, opts.bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.backend)
	}
}
