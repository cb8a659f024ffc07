package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"blogstats/internal/config"
)

type Storage interface {
	UploadExport(ctx context.Context, file io.Reader, size int64) (string, error)
}

type MinIOClient struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinIOClient connects to the object store and creates the export bucket when it is missing.
func NewMinIOClient(ctx context.Context, cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinIO.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinIO.BucketName, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinIO.BucketName, minio.MakeBucketOptions{Region: cfg.MinIO.Region})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinIO.BucketName, err)
		}
	}

	return &MinIOClient{client: client, bucket: cfg.MinIO.BucketName, now: time.Now}, nil
}

// UploadExport stores a CSV export and returns its object name. A negative size streams
// the reader until EOF.
func (m *MinIOClient) UploadExport(ctx context.Context, file io.Reader, size int64) (string, error) {
	now := m.now()
	objectName := ExportObjectName(now, uuid.New())

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: "text/csv",
			UserMetadata: map[string]string{
				"exported-at": now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload export to MinIO: %w", err)
	}

	return objectName, nil
}

func ExportObjectName(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("exports/%d/%02d/%s.csv", at.Year(), at.Month(), id.String())
}
