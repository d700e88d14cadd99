package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"staff-sync/core/storage"
)

// Archive uploads one exported report file to the archive bucket,
// creating the bucket on first use. The object keeps the report's file
// name.
func Archive(ctx context.Context, client storage.Client, cfg storage.Config, reportPath string, log *zap.Logger) error {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	f, err := os.Open(reportPath)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat report file: %w", err)
	}

	objectName := filepath.Base(reportPath)
	info, err := client.PutObject(ctx, cfg.Bucket, objectName, f, stat.Size(), minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
	})
	if err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	log.Info("Report archived",
		zap.String("bucket", cfg.Bucket),
		zap.String("object", objectName),
		zap.Int64("size", info.Size))
	return nil
}
