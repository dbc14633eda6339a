package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"riverside/config"
)

// BackupSyncer mirrors the local database file to off-site storage.
type BackupSyncer interface {
	Sync(ctx context.Context) error
}

// MinioBackup pushes the database file wholesale to an S3-compatible
// bucket under a fixed key. Full-file overwrite, no versioning.
type MinioBackup struct {
	client *minio.Client
	bucket string
	key    string
	dbPath string
}

// NewMinioBackup connects to the object store and ensures the bucket exists.
func NewMinioBackup(cfg config.AppConfig) (*MinioBackup, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioBackup{client: client, bucket: cfg.S3Bucket, key: cfg.S3ObjectKey, dbPath: cfg.DBPath}, nil
}

// Sync uploads the current database file.
func (b *MinioBackup) Sync(ctx context.Context) error {
	_, err := b.client.FPutObject(ctx, b.bucket, b.key, b.dbPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("put backup object: %w", err)
	}
	return nil
}

// SyncAfterWrite runs a best-effort backup after a mutation. Failures are
// logged and never surface to the request; a nil syncer is a no-op.
func SyncAfterWrite(b BackupSyncer) {
	if b == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.Sync(ctx); err != nil {
		Sugar.Warnf("database backup failed: %v", err)
	}
}
