package application

import "context"

type ListFilter struct {
	UserID         string
	Status         Status
	IncludeDeleted bool
	OnlyDeleted    bool
	Limit          int
	Offset         int
}

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	// GetByApplicationID loads the application with its ordered history, deleted or not.
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	// GetByApplicationIDForUpdate is GetByApplicationID with a row lock held for the transaction.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	// GetByIDForUpdate locks by internal id; used when only a foreign key is known.
	GetByIDForUpdate(ctx context.Context, id uint64) (*LoanApplication, error)
	List(ctx context.Context, f ListFilter) ([]LoanApplication, error)
	// ListIDsByUser returns public ids of the user's applications filtered by deletion flag.
	ListIDsByUser(ctx context.Context, userID string, deleted bool) ([]string, error)
	// Persist writes mutable columns and appends any new history entries.
	Persist(ctx context.Context, a *LoanApplication) error
	// HardDelete removes the application row and its history.
	HardDelete(ctx context.Context, a *LoanApplication) error
}
