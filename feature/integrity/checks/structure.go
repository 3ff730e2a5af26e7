package checks

import (
	"bytes"
	"context"
	"fmt"

	"ticket-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// RequiredFolders lists the prefixes the report archive writes under.
var RequiredFolders = []string{"reconciliation"}

// StorageReport describes the state of the archive bucket.
type StorageReport struct {
	Bucket  string   `json:"bucket"`
	Exists  bool     `json:"exists"`
	Missing []string `json:"missing"`
}

// CheckStructure reports whether the bucket and its required folders exist.
func CheckStructure(ctx context.Context, client storage.Client, bucket string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket, Missing: []string{}}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		report.Missing = append(report.Missing, RequiredFolders...)
		return report, nil
	}
	report.Exists = true

	for _, folder := range RequiredFolders {
		opts := minio.ListObjectsOptions{
			Prefix:    folder + "/",
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, bucket, opts) {
			if obj.Err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", folder, obj.Err)
			}
			found = true
			break
		}
		if !found {
			report.Missing = append(report.Missing, folder)
		}
	}

	return report, nil
}

// FixStructure creates the bucket if needed and a marker object for each missing folder.
func FixStructure(ctx context.Context, client storage.Client, bucket, region string, logger *zap.Logger, missing []string) error {
	if err := storage.EnsureBucket(ctx, client, bucket, region); err != nil {
		return err
	}

	for _, folder := range missing {
		_, err := client.PutObject(ctx, bucket, folder+"/", bytes.NewReader(nil), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create folder", zap.String("folder", folder), zap.Error(err))
			return err
		}
		logger.Info("Created missing folder", zap.String("folder", folder))
	}
	return nil
}
