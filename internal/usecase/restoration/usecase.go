package restoration

import (
	"context"
	"errors"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/notification"
	rest "loan-backoffice/internal/domain/restoration"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/internal/usecase"
	"loan-backoffice/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	deps       usecase.Deps
	adminInbox string
	logger     *zap.Logger
}

// NewUsecase wires the workflow; adminInbox receives new-request notifications.
func NewUsecase(deps usecase.Deps, adminInbox string) *Usecase {
	return &Usecase{deps: deps, adminInbox: adminInbox, logger: deps.Named("restoration.usecase")}
}

// Request files a restoration request against a soft-deleted application.
func (u *Usecase) Request(ctx context.Context, p authz.Principal, applicationID, reason string) (*rest.Request, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapRequestRestoration); err != nil {
		return nil, err
	}
	a, err := u.deps.Repos.Applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(u.deps.Authz, p) {
		return nil, domain.ErrNotFound
	}
	if !a.IsDeleted {
		return nil, domain.ErrNotDeleted
	}
	req, err := rest.NewRequest(id.NewID32(), a.ID, a.ApplicationID, p.UserID, reason)
	if err != nil {
		return nil, err
	}
	if err := u.deps.Repos.Restorations.Create(ctx, req); err != nil {
		if errors.Is(err, rest.ErrPendingExists) {
			metrics.RestorationRequests.WithLabelValues("conflict").Inc()
			u.logger.Warn("restoration request conflict",
				zap.String("application_id", applicationID),
				zap.String("actor", p.UserID),
			)
		}
		return nil, err
	}

	metrics.RestorationRequests.WithLabelValues("requested").Inc()
	u.logger.Info("restoration requested",
		zap.String("request_id", req.RequestID),
		zap.String("application_id", applicationID),
		zap.String("actor", p.UserID),
	)
	if u.deps.Notifier != nil {
		u.deps.Notifier.Notify(ctx, notification.Message{
			To:   u.adminInbox,
			Kind: notification.KindRestorationRequested,
			Data: map[string]string{
				"request_id":     req.RequestID,
				"application_id": applicationID,
				"requested_by":   p.UserID,
				"reason":         req.Reason,
			},
		})
	}
	return req, nil
}

// Approve restores the application and resolves the request in one transaction.
func (u *Usecase) Approve(ctx context.Context, p authz.Principal, requestID, notes string) (*rest.Request, error) {
	return u.review(ctx, p, requestID, rest.StatusApproved, notes)
}

// Reject resolves the request and leaves the application untouched.
func (u *Usecase) Reject(ctx context.Context, p authz.Principal, requestID, notes string) (*rest.Request, error) {
	return u.review(ctx, p, requestID, rest.StatusRejected, notes)
}

func (u *Usecase) review(ctx context.Context, p authz.Principal, requestID string, to rest.Status, notes string) (*rest.Request, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapReviewRestoration); err != nil {
		return nil, err
	}
	var req *rest.Request
	err := u.deps.UoW.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		req, err = r.Restorations.GetByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		now := u.deps.Clock()
		if to == rest.StatusApproved {
			a, err := r.Applications.GetByIDForUpdate(ctx, req.ApplicationID)
			if err != nil {
				return err
			}
			if req.Status != rest.StatusPending {
				return rest.ErrAlreadyReviewed
			}
			if _, err := a.RestoreFromRequest(req.Reason, p.UserID, now); err != nil {
				return err
			}
			if err := r.Applications.Persist(ctx, a); err != nil {
				return err
			}
		}
		if err := req.Resolve(to, p.UserID, notes, now); err != nil {
			return err
		}
		// guarded on status=pending; a concurrent reviewer makes this fail and rolls back the restore
		return r.Restorations.MarkReviewed(ctx, req)
	})
	if err != nil {
		u.logger.Warn("restoration review refused",
			zap.String("request_id", requestID),
			zap.String("decision", string(to)),
			zap.String("actor", p.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.RestorationRequests.WithLabelValues(string(to)).Inc()
	u.logger.Info("restoration reviewed",
		zap.String("request_id", requestID),
		zap.String("application_id", req.ApplicationRef),
		zap.String("decision", string(to)),
		zap.String("actor", p.UserID),
	)
	kind := notification.KindRestorationApproved
	if to == rest.StatusRejected {
		kind = notification.KindRestorationRejected
	}
	u.deps.NotifyUser(ctx, req.RequestedBy, kind, map[string]string{
		"request_id":     req.RequestID,
		"application_id": req.ApplicationRef,
		"notes":          deref(req.ReviewNotes),
	})
	return req, nil
}

func (u *Usecase) List(ctx context.Context, p authz.Principal, status rest.Status) ([]rest.Request, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapViewRestorations); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, rest.ErrInvalidStatusFilter
	}
	return u.deps.Repos.Restorations.List(ctx, status)
}

func (u *Usecase) ListForApplication(ctx context.Context, p authz.Principal, applicationID string) ([]rest.Request, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapViewRestorations); err != nil {
		return nil, err
	}
	a, err := u.deps.Repos.Applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(u.deps.Authz, p) {
		return nil, domain.ErrNotFound
	}
	return u.deps.Repos.Restorations.ListByApplication(ctx, a.ID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
