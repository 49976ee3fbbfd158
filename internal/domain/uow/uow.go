package uow

import (
	"context"

	"loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/domain/restoration"
	"loan-backoffice/internal/domain/user"
)

type Repos struct {
	Applications application.Repository
	Users        user.Repository
	Documents    document.Repository
	Restorations restoration.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the application row first, then pass it in
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.LoanApplication) error) error
}
