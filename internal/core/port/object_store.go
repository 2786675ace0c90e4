package port

import (
	"context"
	"io"
	"time"
)

// ObjectStore persists binary blobs (product images) outside the database.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}
