package infra

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tranqh/photokeep/config"
)

type MinioClient struct {
	Admin    *madmin.AdminClient
	Client   *minio.Client
	Bucket   string
	Endpoint string
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	client := &MinioClient{
		Admin:    madminClient,
		Client:   minioClient,
		Bucket:   cfg.Minio.Bucket,
		Endpoint: endpoint,
	}

	if err := client.EnsureBucket(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to ensure bucket %q: %v", cfg.Minio.Bucket, err))
	}

	return client
}

// EnsureBucket creates the photos bucket if it doesn't exist.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", key, err)
	}
	return nil
}

func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	// Removing a missing key succeeds, so this call is idempotent.
	err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (m *MinioClient) RemoveObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo)
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
	}()

	errorCh := m.Client.RemoveObjects(ctx, m.Bucket, objectsCh, minio.RemoveObjectsOptions{})
	for err := range errorCh {
		if err.Err != nil {
			return fmt.Errorf("failed to remove object %s: %w", err.ObjectName, err.Err)
		}
	}

	return nil
}

func (m *MinioClient) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := m.Client.PresignedGetObject(ctx, m.Bucket, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return u.String(), nil
}

// Health probes the storage backend through the admin API.
func (m *MinioClient) Health(ctx context.Context) error {
	_, err := m.Admin.ServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("minio server info: %w", err)
	}
	return nil
}
