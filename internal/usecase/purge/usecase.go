package purge

import (
	"context"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/internal/usecase"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// blob deletes in flight at once
const removeConcurrency = 4

type Result struct {
	ApplicationID       string `json:"application_id"`
	Documents           int64  `json:"documents"`
	RestorationRequests int64  `json:"restoration_requests"`
	HistoryEntries      int    `json:"history_entries"`
}

type Usecase struct {
	deps   usecase.Deps
	blobs  document.BlobStore
	logger *zap.Logger
}

func NewUsecase(deps usecase.Deps, blobs document.BlobStore) *Usecase {
	return &Usecase{deps: deps, blobs: blobs, logger: deps.Named("purge.usecase")}
}

// Purge hard-deletes a soft-deleted application with its history, document
// records and restoration requests. Nothing is kept afterwards.
func (u *Usecase) Purge(ctx context.Context, p authz.Principal, applicationID string) (*Result, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapPurgeApplication); err != nil {
		return nil, err
	}
	res := &Result{ApplicationID: applicationID}
	var keys []string
	err := u.deps.UoW.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if !a.IsDeleted {
			return domain.ErrNotDeleted
		}
		if a.Status == domain.StatusApproved {
			return domain.ErrApprovedNotPurgeable
		}
		docs, err := r.Documents.ListByApplication(ctx, a.ID)
		if err != nil {
			return err
		}
		for _, d := range docs {
			keys = append(keys, d.StorageKey)
		}
		if res.Documents, err = r.Documents.DeleteByApplication(ctx, a.ID); err != nil {
			return err
		}
		if res.RestorationRequests, err = r.Restorations.DeleteByApplication(ctx, a.ID); err != nil {
			return err
		}
		res.HistoryEntries = len(a.StatusHistory)
		return r.Applications.HardDelete(ctx, a)
	})
	if err != nil {
		u.logger.Warn("purge refused",
			zap.String("application_id", applicationID),
			zap.String("actor", p.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	u.removeBlobs(context.WithoutCancel(ctx), keys)

	metrics.ApplicationPurges.Inc()
	u.logger.Info("application purged",
		zap.String("application_id", applicationID),
		zap.String("actor", p.UserID),
		zap.Int64("documents", res.Documents),
		zap.Int64("restoration_requests", res.RestorationRequests),
		zap.Int("history_entries", res.HistoryEntries),
	)
	return res, nil
}

// removeBlobs runs after commit. Failures leave orphaned objects and are only logged.
func (u *Usecase) removeBlobs(ctx context.Context, keys []string) {
	if u.blobs == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(removeConcurrency)
	for _, k := range keys {
		g.Go(func() error {
			if err := u.blobs.Remove(ctx, k); err != nil {
				u.logger.Error("purge blob remove failed", zap.String("storage_key", k), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
