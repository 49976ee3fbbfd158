package application

import (
	"context"
	"fmt"
	"strings"

	"loan-backoffice/internal/apperror"
	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/domain/notification"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/metrics"
	"loan-backoffice/internal/usecase"
	"loan-backoffice/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	deps   usecase.Deps
	blobs  document.BlobStore
	logger *zap.Logger
}

func NewUsecase(deps usecase.Deps, blobs document.BlobStore) *Usecase {
	return &Usecase{deps: deps, blobs: blobs, logger: deps.Named("application.usecase")}
}

func (u *Usecase) Submit(ctx context.Context, p authz.Principal, in SubmitInput) (*ApplicationDTO, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapSubmitApplication); err != nil {
		return nil, err
	}
	a, err := domain.NewApplication(id.NewID32(), p.UserID, in.LoanType, in.RequestedAmount, in.Purpose, in.TenureMonths, u.deps.Clock())
	if err != nil {
		return nil, err
	}
	if err := u.deps.Repos.Applications.Create(ctx, a); err != nil {
		u.logger.Error("submit application persist failed", zap.String("user_id", p.UserID), zap.Error(err))
		return nil, err
	}
	u.logger.Info("application submitted",
		zap.String("application_id", a.ApplicationID),
		zap.String("user_id", p.UserID),
	)
	return ToDTO(a), nil
}

// load returns the application if the principal may see it, ErrNotFound otherwise.
func (u *Usecase) load(ctx context.Context, p authz.Principal, applicationID string) (*domain.LoanApplication, error) {
	a, err := u.deps.Repos.Applications.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(u.deps.Authz, p) {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (u *Usecase) Get(ctx context.Context, p authz.Principal, applicationID string) (*ApplicationDTO, error) {
	a, err := u.load(ctx, p, applicationID)
	if err != nil {
		return nil, err
	}
	return ToDTO(a), nil
}

func (u *Usecase) List(ctx context.Context, p authz.Principal, in ListInput) ([]ApplicationDTO, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	f := domain.ListFilter{Status: in.Status, Limit: in.Limit, Offset: in.Offset}
	if !u.deps.Authz.Can(p, authz.CapViewAnyApplication) {
		f.UserID = p.UserID
	}
	if u.deps.Authz.Can(p, authz.CapViewDeleted) {
		f.IncludeDeleted = in.IncludeDeleted
		f.OnlyDeleted = in.OnlyDeleted
	}
	apps, err := u.deps.Repos.Applications.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		out = append(out, *ToDTO(&apps[i]))
	}
	return out, nil
}

func (u *Usecase) DocumentStatus(ctx context.Context, p authz.Principal, applicationID string) (*DocumentStatusDTO, error) {
	a, err := u.load(ctx, p, applicationID)
	if err != nil {
		return nil, err
	}
	docs, err := u.deps.Repos.Documents.ListByApplication(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	gate := document.Evaluate(document.UploadsOf(docs))
	missing := gate.Missing()
	if missing == nil {
		missing = []document.Type{}
	}
	return &DocumentStatusDTO{
		ApplicationID: a.ApplicationID,
		Gate:          gate,
		Missing:       missing,
	}, nil
}

// UploadDocument stores the file, records it and lets the gate move the
// application to under_review when the required set becomes complete.
func (u *Usecase) UploadDocument(ctx context.Context, p authz.Principal, in UploadInput) (*UploadResultDTO, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapUploadDocument); err != nil {
		return nil, err
	}
	docType, ok := document.ParseType(in.DocType)
	if !ok {
		return nil, document.ErrUnknownType
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, document.ErrEmptyFile
	}

	// checked again under the lock; this keeps bytes out of the store for refused uploads
	pre, err := u.load(ctx, p, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !pre.OwnedBy(p.UserID) || pre.IsDeleted {
		return nil, domain.ErrNotFound
	}
	if pre.Status == domain.StatusApproved || pre.Status == domain.StatusRejected {
		return nil, domain.ErrDocumentsLocked
	}

	now := u.deps.Clock()
	doc := &document.Document{
		DocumentID:  id.NewID32(),
		DocType:     docType,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		SizeBytes:   in.Size,
		UploadedBy:  p.UserID,
		UploadedAt:  now,
	}
	doc.StorageKey = document.StorageKey(in.ApplicationID, docType, doc.DocumentID)
	if err := u.blobs.Put(ctx, doc.StorageKey, in.Body, in.Size, in.ContentType); err != nil {
		u.logger.Error("document blob put failed", zap.String("application_id", in.ApplicationID), zap.Error(err))
		return nil, apperror.ErrInternal.WithCause(err)
	}

	var (
		replacedKey string
		gate        document.GateResult
		outcome     domain.GateOutcome
		from        domain.Status
		dto         *ApplicationDTO
	)
	err = u.deps.UoW.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if a.IsDeleted || !a.OwnedBy(p.UserID) {
			return domain.ErrNotFound
		}
		existing, err := r.Documents.ListByApplication(ctx, a.ID)
		if err != nil {
			return err
		}
		doc.ApplicationID = a.ID
		if err := r.Documents.Upsert(ctx, doc); err != nil {
			return err
		}

		current := make([]document.Document, 0, len(existing)+1)
		for _, d := range existing {
			if d.DocType == docType {
				replacedKey = d.StorageKey
				continue
			}
			current = append(current, d)
		}
		current = append(current, *doc)
		gate = document.Evaluate(document.UploadsOf(current))

		from = a.Status
		outcome, err = a.ApplyGate(gate, p.UserID, now)
		if err != nil {
			return err
		}
		if err := r.Applications.Persist(ctx, a); err != nil {
			return err
		}
		dto = ToDTO(a)
		return nil
	})
	if err != nil {
		u.removeBlob(ctx, doc.StorageKey)
		return nil, err
	}
	if replacedKey != "" && replacedKey != doc.StorageKey {
		u.removeBlob(ctx, replacedKey)
	}

	u.logger.Info("document uploaded",
		zap.String("application_id", in.ApplicationID),
		zap.String("doc_type", string(docType)),
		zap.Int("required_present", gate.RequiredPresent),
		zap.Bool("complete", gate.Complete),
	)
	if outcome.EnteredReview {
		metrics.ApplicationTransitions.WithLabelValues(string(from), string(domain.StatusUnderReview)).Inc()
		kind := notification.KindStatusChanged
		if outcome.FirstReview {
			kind = notification.KindApplicationSubmitted
		}
		u.deps.NotifyUser(ctx, dto.UserID, kind, map[string]string{
			"application_id": dto.ApplicationID,
			"status":         string(domain.StatusUnderReview),
		})
	}

	return &UploadResultDTO{
		DocumentID:    doc.DocumentID,
		DocType:       docType,
		Gate:          gate,
		EnteredReview: outcome.EnteredReview,
		Application:   dto,
	}, nil
}

func (u *Usecase) removeBlob(ctx context.Context, key string) {
	if err := u.blobs.Remove(context.WithoutCancel(ctx), key); err != nil {
		u.logger.Warn("document blob remove failed", zap.String("storage_key", key), zap.Error(err))
	}
}

func (u *Usecase) Approve(ctx context.Context, p authz.Principal, applicationID string, details domain.ApprovalDetails, comment string) (*ApplicationDTO, error) {
	return u.decide(ctx, p, applicationID, func(a *domain.LoanApplication) error {
		_, err := a.Decide(domain.Approval{Details: details, Comment: comment}, p.UserID, u.deps.Clock())
		return err
	}, func(dto *ApplicationDTO) {
		u.deps.NotifyUser(ctx, dto.UserID, notification.KindStatusChanged, map[string]string{
			"application_id": dto.ApplicationID,
			"status":         string(dto.Status),
			"comment":        comment,
		})
	})
}

func (u *Usecase) Reject(ctx context.Context, p authz.Principal, applicationID, reason, comment string) (*ApplicationDTO, error) {
	return u.decide(ctx, p, applicationID, func(a *domain.LoanApplication) error {
		_, err := a.Decide(domain.Rejection{Reason: reason, Comment: comment}, p.UserID, u.deps.Clock())
		return err
	}, func(dto *ApplicationDTO) {
		u.deps.NotifyUser(ctx, dto.UserID, notification.KindStatusChanged, map[string]string{
			"application_id": dto.ApplicationID,
			"status":         string(dto.Status),
			"comment":        reason,
		})
	})
}

func (u *Usecase) RequestDocuments(ctx context.Context, p authz.Principal, applicationID string, docs []string, comment string) (*ApplicationDTO, error) {
	return u.decide(ctx, p, applicationID, func(a *domain.LoanApplication) error {
		_, err := a.RequestDocuments(docs, comment, p.UserID, u.deps.Clock())
		return err
	}, func(dto *ApplicationDTO) {
		u.deps.NotifyUser(ctx, dto.UserID, notification.KindDocumentsRequested, map[string]string{
			"application_id": dto.ApplicationID,
			"documents":      "- " + strings.Join(dto.RequestedDocuments, "\n- "),
		})
	})
}

// decide runs an underwriter transition as one locked read-modify-write.
func (u *Usecase) decide(
	ctx context.Context,
	p authz.Principal,
	applicationID string,
	apply func(a *domain.LoanApplication) error,
	notify func(dto *ApplicationDTO),
) (*ApplicationDTO, error) {
	if err := authz.Require(u.deps.Authz, p, authz.CapDecideApplication); err != nil {
		return nil, err
	}
	var (
		dto  *ApplicationDTO
		from domain.Status
	)
	err := u.deps.UoW.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, a *domain.LoanApplication) error {
		if !a.VisibleTo(u.deps.Authz, p) {
			return domain.ErrNotFound
		}
		from = a.Status
		if err := apply(a); err != nil {
			return err
		}
		if err := r.Applications.Persist(ctx, a); err != nil {
			return fmt.Errorf("persist application %s: %w", a.ApplicationID, err)
		}
		dto = ToDTO(a)
		return nil
	})
	if err != nil {
		u.logger.Warn("application transition refused",
			zap.String("application_id", applicationID),
			zap.String("actor", p.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.ApplicationTransitions.WithLabelValues(string(from), string(dto.Status)).Inc()
	u.logger.Info("application transitioned",
		zap.String("application_id", applicationID),
		zap.String("from", string(from)),
		zap.String("to", string(dto.Status)),
		zap.String("actor", p.UserID),
	)
	notify(dto)
	return dto, nil
}
