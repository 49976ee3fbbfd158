package softdelete

import (
	"context"
	"errors"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/domain/user"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/internal/usecase"
	appUC "loan-backoffice/internal/usecase/application"

	"go.uber.org/zap"
)

const (
	opDeleteUser  = "delete_user"
	opRestoreUser = "restore_user"
)

// errSkip marks an application the cascade deliberately leaves alone.
var errSkip = errors.New("skip")

type CascadeFailure struct {
	ApplicationID string `json:"application_id"`
	Error         string `json:"error"`
}

// CascadeResult reports what happened to each owned application. Failures do
// not undo the account change or the applications already processed.
type CascadeResult struct {
	UserID   string           `json:"user_id"`
	Affected []string         `json:"affected"`
	Skipped  []string         `json:"skipped"`
	Failed   []CascadeFailure `json:"failed"`
}

type Usecase struct {
	deps   usecase.Deps
	logger *zap.Logger
}

func NewUsecase(deps usecase.Deps) *Usecase {
	return &Usecase{deps: deps, logger: deps.Named("softdelete.usecase")}
}

// DeleteApplication is the owner's voluntary soft delete.
func (u *Usecase) DeleteApplication(ctx context.Context, p authz.Principal, applicationID string) (*appUC.ApplicationDTO, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapDeleteOwnApplication); err != nil {
		return nil, err
	}
	var dto *appUC.ApplicationDTO
	err := u.deps.UoW.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		// applications the caller cannot see do not exist for them
		if !a.VisibleTo(u.deps.Authz, p) {
			return domain.ErrNotFound
		}
		if _, err := a.SoftDeleteByOwner(p.UserID, u.deps.Clock()); err != nil {
			return err
		}
		if err := r.Applications.Persist(ctx, a); err != nil {
			return err
		}
		dto = appUC.ToDTO(a)
		return nil
	})
	if err != nil {
		u.logger.Warn("application delete refused",
			zap.String("application_id", applicationID),
			zap.String("actor", p.UserID),
			zap.Error(err),
		)
		return nil, err
	}
	u.logger.Info("application deleted by owner",
		zap.String("application_id", applicationID),
		zap.String("actor", p.UserID),
	)
	return dto, nil
}

// DeleteUser soft-deletes the account, then every live application it owns,
// each in its own transaction.
func (u *Usecase) DeleteUser(ctx context.Context, p authz.Principal, userID string) (*CascadeResult, error) {
	if p.UserID != userID {
		if err := authz.Require(u.deps.Authz, p, authz.CapDeleteAnyAccount); err != nil {
			return nil, err
		}
	}
	now := u.deps.Clock()
	err := u.deps.UoW.WithinTx(ctx, func(r uow.Repos) error {
		acc, err := r.Users.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if acc.IsDeleted {
			return user.ErrAlreadyDeleted
		}
		return r.Users.SetDeleted(ctx, userID, true, &now)
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("user account deleted", zap.String("user_id", userID), zap.String("actor", p.UserID))

	ids, err := u.deps.Repos.Applications.ListIDsByUser(ctx, userID, false)
	if err != nil {
		u.logger.Error("cascade listing failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return u.cascade(ctx, opDeleteUser, userID, ids, func(a *domain.LoanApplication) error {
		if a.IsDeleted {
			return errSkip
		}
		_, err := a.CascadeDelete(p.UserID, u.deps.Clock())
		return err
	}), nil
}

// RestoreUser reactivates the account and only those applications whose last
// history entry is the account-cascade deletion marker.
func (u *Usecase) RestoreUser(ctx context.Context, p authz.Principal, userID string) (*CascadeResult, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapRestoreAccount); err != nil {
		return nil, err
	}
	err := u.deps.UoW.WithinTx(ctx, func(r uow.Repos) error {
		acc, err := r.Users.GetByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !acc.IsDeleted {
			return user.ErrNotDeleted
		}
		return r.Users.SetDeleted(ctx, userID, false, nil)
	})
	if err != nil {
		return nil, err
	}
	u.logger.Info("user account restored", zap.String("user_id", userID), zap.String("actor", p.UserID))

	ids, err := u.deps.Repos.Applications.ListIDsByUser(ctx, userID, true)
	if err != nil {
		u.logger.Error("cascade listing failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return u.cascade(ctx, opRestoreUser, userID, ids, func(a *domain.LoanApplication) error {
		if !a.DeletedByAccountCascade() {
			return errSkip
		}
		_, err := a.RestoreFromAccount(p.UserID, u.deps.Clock())
		return err
	}), nil
}

func (u *Usecase) cascade(ctx context.Context, op, userID string, ids []string, step func(a *domain.LoanApplication) error) *CascadeResult {
	res := &CascadeResult{
		UserID:   userID,
		Affected: []string{},
		Skipped:  []string{},
		Failed:   []CascadeFailure{},
	}
	for _, appID := range ids {
		err := u.deps.UoW.WithinApplicationTx(ctx, appID, func(r uow.Repos, a *domain.LoanApplication) error {
			if err := step(a); err != nil {
				return err
			}
			return r.Applications.Persist(ctx, a)
		})
		switch {
		case err == nil:
			res.Affected = append(res.Affected, appID)
			metrics.SoftDeleteCascade.WithLabelValues(op, "affected").Inc()
		case errors.Is(err, errSkip):
			res.Skipped = append(res.Skipped, appID)
			metrics.SoftDeleteCascade.WithLabelValues(op, "skipped").Inc()
		default:
			res.Failed = append(res.Failed, CascadeFailure{ApplicationID: appID, Error: err.Error()})
			metrics.SoftDeleteCascade.WithLabelValues(op, "failed").Inc()
			u.logger.Error("cascade step failed",
				zap.String("operation", op),
				zap.String("user_id", userID),
				zap.String("application_id", appID),
				zap.Error(err),
			)
		}
	}
	u.logger.Info("cascade finished",
		zap.String("operation", op),
		zap.String("user_id", userID),
		zap.Int("affected", len(res.Affected)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failed)),
	)
	return res
}
