package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUserID(ctx context.Context, userID string) (*User, error)
	// GetByUserIDForUpdate locks the row for the rest of the transaction.
	GetByUserIDForUpdate(ctx context.Context, userID string) (*User, error)
	SetDeleted(ctx context.Context, userID string, deleted bool, at *time.Time) error
}
