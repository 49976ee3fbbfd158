package document

import (
	"context"
	"io"
)

type Repository interface {
	// Upsert stores the document, replacing an earlier upload of the same type for the application.
	Upsert(ctx context.Context, d *Document) error
	ListByApplication(ctx context.Context, applicationID uint64) ([]Document, error)
	DeleteByApplication(ctx context.Context, applicationID uint64) (int64, error)
}

// BlobStore keeps document bytes keyed by storage key; the lifecycle engine never reads them.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}
