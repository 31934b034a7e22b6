package infra

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the object-store surface the controllers and the
// reconciliation worker depend on. MinioClient is the production
// implementation; tests swap in an in-memory fake.
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// RemoveObject deletes a single key. Removing an already-absent key is
	// success, so concurrent deletes of the same entity tolerate the race.
	RemoveObject(ctx context.Context, key string) error
	RemoveObjects(ctx context.Context, keys []string) error
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
