package mysql

import (
	"context"

	docDomain "loan-backoffice/internal/domain/document"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentRepository struct{ db *gorm.DB }

func NewDocumentRepository(db *gorm.DB) *DocumentRepository { return &DocumentRepository{db: db} }

func (r *DocumentRepository) Upsert(ctx context.Context, d *docDomain.Document) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "doc_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"document_id", "file_name", "content_type", "size_bytes", "storage_key", "uploaded_by", "uploaded_at",
		}),
	}).Create(d).Error
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID uint64) ([]docDomain.Document, error) {
	var out []docDomain.Document
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("uploaded_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *DocumentRepository) DeleteByApplication(ctx context.Context, applicationID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).Delete(&docDomain.Document{})
	return res.RowsAffected, res.Error
}
