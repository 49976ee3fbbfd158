package uowmock

import (
	"context"
	"errors"
	"testing"

	"loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/testutil/appmock"
)

func TestUoW_WithinTx_ForwardsRepos(t *testing.T) {
	ctx := context.Background()
	apps := &appmock.Repo{}
	repos := uow.Repos{Applications: apps}

	called := false
	m := New().WithWithinTx(func(gotCtx context.Context, fn func(uow.Repos) error) error {
		if gotCtx != ctx {
			t.Fatalf("WithinTx: ctx mismatch")
		}
		return fn(repos)
	})

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		called = true
		if r.Applications != apps {
			t.Fatalf("WithinTx: repos not forwarded")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := New().WithWithinTx(func(context.Context, func(uow.Repos) error) error { return sentinel })
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("want %v, got %v", sentinel, err)
	}
}

func TestUoW_DefaultsAreUnimplemented(t *testing.T) {
	m := New()
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: got %v", err)
	}
	err := m.WithinApplicationTx(context.Background(), "x", func(uow.Repos, *application.LoanApplication) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinApplicationTx default: got %v", err)
	}
}

func TestUoW_Reset(t *testing.T) {
	m := New().WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil })
	m.Reset()
	if m.WithinTxFn != nil || m.WithinApplicationTxFn != nil {
		t.Fatalf("Reset left functions set")
	}
}

func TestPassthrough_LoadsApplication(t *testing.T) {
	ctx := context.Background()
	want := &application.LoanApplication{ID: 7, ApplicationID: "app-7"}
	apps := &appmock.Repo{
		GetByApplicationIDForUpdateFn: func(_ context.Context, id string) (*application.LoanApplication, error) {
			if id != "app-7" {
				return nil, application.ErrNotFound
			}
			return want, nil
		},
	}
	m := Passthrough(uow.Repos{Applications: apps})

	var got *application.LoanApplication
	if err := m.WithinApplicationTx(ctx, "app-7", func(_ uow.Repos, a *application.LoanApplication) error {
		got = a
		return nil
	}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("application not passed through")
	}

	err := m.WithinApplicationTx(ctx, "missing", func(uow.Repos, *application.LoanApplication) error {
		t.Fatalf("callback must not run for a missing application")
		return nil
	})
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
