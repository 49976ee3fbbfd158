package restoration

import "context"

type Repository interface {
	// Create inserts a pending request; a second pending request for the same
	// application fails with ErrPendingExists from the unique index.
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	// MarkReviewed persists a resolution, guarded on the row still being pending.
	MarkReviewed(ctx context.Context, r *Request) error
	List(ctx context.Context, status Status) ([]Request, error)
	ListByApplication(ctx context.Context, applicationID uint64) ([]Request, error)
	DeleteByApplication(ctx context.Context, applicationID uint64) (int64, error)
}
