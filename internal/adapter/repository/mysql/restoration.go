package mysql

import (
	"context"

	restDomain "loan-backoffice/internal/domain/restoration"

	"gorm.io/gorm"
)

type RestorationRepository struct{ db *gorm.DB }

func NewRestorationRepository(db *gorm.DB) *RestorationRepository {
	return &RestorationRepository{db: db}
}

// Create relies on ux_restoration_requests_pending; there is no read-before-write.
func (r *RestorationRepository) Create(ctx context.Context, req *restDomain.Request) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if isDuplicateKey(err) {
		return restDomain.ErrPendingExists
	}
	return err
}

func (r *RestorationRepository) GetByRequestID(ctx context.Context, requestID string) (*restDomain.Request, error) {
	var out restDomain.Request
	if err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out).Error; err != nil {
		return nil, notFoundAs(err, restDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *RestorationRepository) MarkReviewed(ctx context.Context, req *restDomain.Request) error {
	res := r.db.WithContext(ctx).Model(&restDomain.Request{}).
		Where("id = ? AND status = ?", req.ID, restDomain.StatusPending).
		Updates(map[string]any{
			"status":       req.Status,
			"pending_key":  nil,
			"reviewed_by":  req.ReviewedBy,
			"reviewed_at":  req.ReviewedAt,
			"review_notes": req.ReviewNotes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return restDomain.ErrAlreadyReviewed
	}
	return nil
}

func (r *RestorationRepository) List(ctx context.Context, status restDomain.Status) ([]restDomain.Request, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []restDomain.Request
	err := q.Find(&out).Error
	return out, err
}

func (r *RestorationRepository) ListByApplication(ctx context.Context, applicationID uint64) ([]restDomain.Request, error) {
	var out []restDomain.Request
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *RestorationRepository) DeleteByApplication(ctx context.Context, applicationID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Delete(&restDomain.Request{})
	return res.RowsAffected, res.Error
}
