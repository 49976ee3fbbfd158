package appmock

import (
	"context"

	domain "loan-backoffice/internal/domain/application"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to no-ops, reads default to ErrNotFound.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.LoanApplication) error
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.LoanApplication, error)
	GetByIDForUpdateFn            func(ctx context.Context, id uint64) (*domain.LoanApplication, error)
	ListFn                        func(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, error)
	ListIDsByUserFn               func(ctx context.Context, userID string, deleted bool) ([]string, error)
	PersistFn                     func(ctx context.Context, a *domain.LoanApplication) error
	HardDeleteFn                  func(ctx context.Context, a *domain.LoanApplication) error
}

func (m *Repo) Create(ctx context.Context, a *domain.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.LoanApplication, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.LoanApplication, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) ListIDsByUser(ctx context.Context, userID string, deleted bool) ([]string, error) {
	if m.ListIDsByUserFn != nil {
		return m.ListIDsByUserFn(ctx, userID, deleted)
	}
	return nil, nil
}

func (m *Repo) Persist(ctx context.Context, a *domain.LoanApplication) error {
	if m.PersistFn != nil {
		return m.PersistFn(ctx, a)
	}
	return nil
}

func (m *Repo) HardDelete(ctx context.Context, a *domain.LoanApplication) error {
	if m.HardDeleteFn != nil {
		return m.HardDeleteFn(ctx, a)
	}
	return nil
}
