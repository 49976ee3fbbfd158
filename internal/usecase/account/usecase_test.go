package account_test

import (
	"context"
	"testing"

	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/user"
	"loan-backoffice/internal/testutil/dbtest"
	"loan-backoffice/internal/usecase/account"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := dbtest.NewEnv(t)
	_, admin := env.SeedUser(t, authz.RoleAdmin)
	_, applicant := env.SeedUser(t, authz.RoleApplicant)
	uc := account.NewUsecase(env.Deps)
	ctx := context.Background()

	acc, err := uc.Register(ctx, admin, account.RegisterInput{Email: "  Dewi@Example.test ", FullName: "Dewi", Role: authz.RoleUnderwriter})
	require.NoError(t, err)
	assert.Equal(t, "dewi@example.test", acc.Email)
	assert.Len(t, acc.UserID, 32)

	_, err = uc.Register(ctx, admin, account.RegisterInput{Email: "dewi@example.test", FullName: "Dewi 2", Role: authz.RoleApplicant})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = uc.Register(ctx, admin, account.RegisterInput{Email: "x@example.test", FullName: "X", Role: "auditor"})
	assert.ErrorIs(t, err, account.ErrInvalidProfile)

	_, err = uc.Register(ctx, applicant, account.RegisterInput{Email: "y@example.test", FullName: "Y", Role: authz.RoleApplicant})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestGet(t *testing.T) {
	env := dbtest.NewEnv(t)
	_, admin := env.SeedUser(t, authz.RoleAdmin)
	self, p := env.SeedUser(t, authz.RoleApplicant)
	_, other := env.SeedUser(t, authz.RoleApplicant)
	uc := account.NewUsecase(env.Deps)
	ctx := context.Background()

	got, err := uc.Get(ctx, p, self.UserID)
	require.NoError(t, err)
	assert.Equal(t, self.Email, got.Email)

	_, err = uc.Get(ctx, other, self.UserID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	require.NoError(t, env.Deps.Repos.Users.SetDeleted(ctx, self.UserID, true, nil))
	_, err = uc.Get(ctx, p, self.UserID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	got, err = uc.Get(ctx, admin, self.UserID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}
