package account

import (
	"context"
	"net/http"
	"strings"

	"loan-backoffice/internal/apperror"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/user"
	"loan-backoffice/internal/usecase"
	"loan-backoffice/pkg/id"

	"go.uber.org/zap"
)

var ErrInvalidProfile = apperror.New(
	apperror.CodeValidationError,
	"email, full name and a known role are required",
	http.StatusBadRequest,
)

type RegisterInput struct {
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     authz.Role `json:"role"`
}

type Usecase struct {
	deps   usecase.Deps
	logger *zap.Logger
}

func NewUsecase(deps usecase.Deps) *Usecase {
	return &Usecase{deps: deps, logger: deps.Named("account.usecase")}
}

// Register records a profile for an identity issued by the auth gateway.
func (u *Usecase) Register(ctx context.Context, p authz.Principal, in RegisterInput) (*user.User, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapManageAccounts); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.FullName)
	if email == "" || name == "" || !in.Role.Valid() {
		return nil, ErrInvalidProfile
	}
	acc := &user.User{
		UserID:   id.NewID32(),
		Email:    email,
		FullName: name,
		Role:     in.Role,
	}
	if err := u.deps.Repos.Users.Create(ctx, acc); err != nil {
		return nil, err
	}
	u.logger.Info("user registered",
		zap.String("user_id", acc.UserID),
		zap.String("role", string(acc.Role)),
		zap.String("actor", p.UserID),
	)
	return acc, nil
}

// Get returns a profile to its owner or an account manager; deleted profiles are
// only visible to managers.
func (u *Usecase) Get(ctx context.Context, p authz.Principal, userID string) (*user.User, error) {
	manager := u.deps.Authz.Can(p, authz.CapManageAccounts)
	if !manager && p.UserID != userID {
		return nil, user.ErrNotFound
	}
	acc, err := u.deps.Repos.Users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acc.IsDeleted && !manager {
		return nil, user.ErrNotFound
	}
	return acc, nil
}
