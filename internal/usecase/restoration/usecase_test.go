package restoration_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"loan-backoffice/internal/apperror"
	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/notification"
	rest "loan-backoffice/internal/domain/restoration"
	"loan-backoffice/internal/testutil/dbtest"
	"loan-backoffice/internal/usecase/application"
	"loan-backoffice/internal/usecase/restoration"
	"loan-backoffice/internal/usecase/softdelete"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	inbox  = "backoffice@example.test"
	reason = "customer confirmed they still want the loan"
)

type fixture struct {
	env       *dbtest.Env
	uc        *restoration.Usecase
	applicant authz.Principal
	uw        authz.Principal
	uwEmail   string
	admin     authz.Principal
	appID     string
}

// newFixture seeds one voluntarily deleted pending application.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := dbtest.NewEnv(t)
	_, applicant := env.SeedUser(t, authz.RoleApplicant)
	uwAcc, uw := env.SeedUser(t, authz.RoleUnderwriter)
	_, admin := env.SeedUser(t, authz.RoleAdmin)
	ctx := context.Background()

	dto, err := application.NewUsecase(env.Deps, env.Blobs).Submit(ctx, applicant, application.SubmitInput{
		LoanType: "personal", RequestedAmount: 3_000_000, TenureMonths: 9,
	})
	require.NoError(t, err)
	_, err = softdelete.NewUsecase(env.Deps).DeleteApplication(ctx, applicant, dto.ApplicationID)
	require.NoError(t, err)

	return &fixture{
		env:       env,
		uc:        restoration.NewUsecase(env.Deps, inbox),
		applicant: applicant,
		uw:        uw,
		uwEmail:   uwAcc.Email,
		admin:     admin,
		appID:     dto.ApplicationID,
	}
}

func TestRequest(t *testing.T) {
	f := newFixture(t)
	req, err := f.uc.Request(context.Background(), f.uw, f.appID, reason)
	require.NoError(t, err)
	assert.Equal(t, rest.StatusPending, req.Status)
	assert.Equal(t, f.appID, req.ApplicationRef)
	assert.Equal(t, f.uw.UserID, req.RequestedBy)

	sent := f.env.Sender.Sent()
	require.NotEmpty(t, sent)
	last := sent[len(sent)-1]
	assert.Equal(t, notification.KindRestorationRequested, last.Kind)
	assert.Equal(t, inbox, last.To)
}

func TestRequest_Refusals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Request(ctx, f.applicant, f.appID, reason)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.uc.Request(ctx, f.uw, f.appID, "too short")
	assert.ErrorIs(t, err, rest.ErrInvalidReason)

	_, err = f.uc.Request(ctx, f.uw, "0123456789abcdef0123456789abcdef", reason)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	live, err := application.NewUsecase(f.env.Deps, f.env.Blobs).Submit(ctx, f.applicant, application.SubmitInput{
		LoanType: "personal", RequestedAmount: 1, TenureMonths: 1,
	})
	require.NoError(t, err)
	_, err = f.uc.Request(ctx, f.uw, live.ApplicationID, reason)
	assert.ErrorIs(t, err, domain.ErrNotDeleted)
}

func TestRequest_ConcurrentOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	const n = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Request(context.Background(), f.uw, f.appID, reason)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperror.HasCode(err, apperror.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	pending, err := f.uc.List(context.Background(), f.admin, rest.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestApprove_RestoresApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.uw, f.appID, reason)
	require.NoError(t, err)

	got, err := f.uc.Approve(ctx, f.admin, req.RequestID, "")
	require.NoError(t, err)
	assert.Equal(t, rest.StatusApproved, got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, f.admin.UserID, *got.ReviewedBy)

	a, err := f.env.Deps.Repos.Applications.GetByApplicationID(ctx, f.appID)
	require.NoError(t, err)
	assert.False(t, a.IsDeleted)
	assert.Equal(t, domain.StatusPending, a.Status)
	last, _ := a.LastHistory()
	assert.Equal(t, "Application restored via restoration request: "+reason, last.Comment)
	assert.Equal(t, f.admin.UserID, last.UpdatedBy)

	sent := f.env.Sender.Sent()
	final := sent[len(sent)-1]
	assert.Equal(t, notification.KindRestorationApproved, final.Kind)
	assert.Equal(t, f.uwEmail, final.To)
}

func TestApprove_TwiceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.uw, f.appID, reason)
	require.NoError(t, err)
	_, err = f.uc.Approve(ctx, f.admin, req.RequestID, "")
	require.NoError(t, err)

	before, err := f.env.Deps.Repos.Applications.GetByApplicationID(ctx, f.appID)
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, f.admin, req.RequestID, "")
	assert.ErrorIs(t, err, rest.ErrAlreadyReviewed)
	_, err = f.uc.Reject(ctx, f.admin, req.RequestID, "changed my mind")
	assert.ErrorIs(t, err, rest.ErrAlreadyReviewed)

	after, err := f.env.Deps.Repos.Applications.GetByApplicationID(ctx, f.appID)
	require.NoError(t, err)
	assert.Len(t, after.StatusHistory, len(before.StatusHistory))
}

func TestReject_LeavesApplicationDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.uw, f.appID, reason)
	require.NoError(t, err)

	_, err = f.uc.Reject(ctx, f.admin, req.RequestID, "")
	assert.ErrorIs(t, err, rest.ErrNotesRequired)

	got, err := f.uc.Reject(ctx, f.admin, req.RequestID, "duplicate of a newer application")
	require.NoError(t, err)
	assert.Equal(t, rest.StatusRejected, got.Status)

	a, err := f.env.Deps.Repos.Applications.GetByApplicationID(ctx, f.appID)
	require.NoError(t, err)
	assert.True(t, a.IsDeleted)

	// a rejected request frees the slot for a new one
	_, err = f.uc.Request(ctx, f.uw, f.appID, reason)
	assert.NoError(t, err)
}

func TestReview_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	req, err := f.uc.Request(context.Background(), f.uw, f.appID, reason)
	require.NoError(t, err)

	_, err = f.uc.Approve(context.Background(), f.uw, req.RequestID, "")
	assert.ErrorIs(t, err, authz.ErrForbidden)
	_, err = f.uc.Approve(context.Background(), f.admin, "0123456789abcdef0123456789abcdef", "")
	assert.ErrorIs(t, err, rest.ErrNotFound)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.uc.Request(ctx, f.uw, f.appID, reason)
	require.NoError(t, err)

	all, err := f.uc.List(ctx, f.uw, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.uc.List(ctx, f.uw, "archived")
	assert.ErrorIs(t, err, rest.ErrInvalidStatusFilter)

	_, err = f.uc.List(ctx, f.applicant, "")
	assert.ErrorIs(t, err, authz.ErrForbidden)

	byApp, err := f.uc.ListForApplication(ctx, f.admin, f.appID)
	require.NoError(t, err)
	require.Len(t, byApp, 1)
	assert.Equal(t, f.appID, byApp[0].ApplicationRef)
	assert.True(t, strings.HasPrefix(byApp[0].Reason, "customer"))
}
