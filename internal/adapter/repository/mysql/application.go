package mysql

import (
	"context"

	appDomain "loan-backoffice/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			return err
		}
		return appendHistory(tx, a)
	})
}

// history is append-only, so insertion order is the order of events even if the clock steps back
func historyOrder(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }

func (r *ApplicationRepository) get(db *gorm.DB, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	err := db.Preload("StatusHistory", historyOrder).
		Where("application_id = ?", applicationID).
		First(&out).Error
	if err != nil {
		return nil, notFoundAs(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	return r.get(r.db.WithContext(ctx), applicationID)
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), applicationID)
}

func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("StatusHistory", historyOrder).
		First(&out, id).Error
	if err != nil {
		return nil, notFoundAs(err, appDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f appDomain.ListFilter) ([]appDomain.LoanApplication, error) {
	q := r.db.WithContext(ctx).Model(&appDomain.LoanApplication{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	switch {
	case f.OnlyDeleted:
		q = q.Where("is_deleted = ?", true)
	case !f.IncludeDeleted:
		q = q.Where("is_deleted = ?", false)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []appDomain.LoanApplication
	err := q.Preload("StatusHistory", historyOrder).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *ApplicationRepository) ListIDsByUser(ctx context.Context, userID string, deleted bool) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&appDomain.LoanApplication{}).
		Where("user_id = ? AND is_deleted = ?", userID, deleted).
		Order("id ASC").
		Pluck("application_id", &ids).Error
	return ids, err
}

// Persist updates the application's columns and inserts the history entries
// appended since load; run it inside a transaction to keep both atomic.
func (r *ApplicationRepository) Persist(ctx context.Context, a *appDomain.LoanApplication) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(a).Error; err != nil {
		return err
	}
	return appendHistory(db, a)
}

func appendHistory(db *gorm.DB, a *appDomain.LoanApplication) error {
	entries := a.TakeAppended()
	if len(entries) == 0 {
		return nil
	}
	return db.Create(&entries).Error
}

func (r *ApplicationRepository) HardDelete(ctx context.Context, a *appDomain.LoanApplication) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("application_id = ?", a.ID).Delete(&appDomain.StatusHistory{}).Error; err != nil {
		return err
	}
	res := db.Delete(&appDomain.LoanApplication{}, a.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appDomain.ErrNotFound
	}
	return nil
}
