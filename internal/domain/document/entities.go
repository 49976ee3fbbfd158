package document

import (
	"net/http"
	"time"

	"loan-backoffice/internal/apperror"
)

var (
	ErrUnknownType = apperror.New(
		apperror.CodeValidationError,
		"unknown document type",
		http.StatusBadRequest,
	)
	ErrEmptyFile = apperror.New(
		apperror.CodeValidationError,
		"uploaded file is empty",
		http.StatusBadRequest,
	)
)

// Document is the metadata record of one uploaded file; the bytes live in the blob store under StorageKey.
type Document struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	DocumentID    string    `gorm:"column:document_id;size:32;not null;uniqueIndex:ux_documents_document_id" json:"document_id"`
	ApplicationID uint64    `gorm:"column:application_id;not null;uniqueIndex:ux_documents_application_type" json:"-"`
	DocType       Type      `gorm:"column:doc_type;size:32;not null;uniqueIndex:ux_documents_application_type" json:"doc_type"`
	FileName      string    `gorm:"column:file_name;size:255" json:"file_name"`
	ContentType   string    `gorm:"column:content_type;size:128" json:"content_type"`
	SizeBytes     int64     `gorm:"column:size_bytes" json:"size_bytes"`
	StorageKey    string    `gorm:"column:storage_key;type:text;not null" json:"-"`
	UploadedBy    string    `gorm:"column:uploaded_by;size:32" json:"uploaded_by"`
	UploadedAt    time.Time `gorm:"column:uploaded_at;not null" json:"uploaded_at"`
}

func (Document) TableName() string { return "documents" }

// StorageKey is the blob key of one upload.
func StorageKey(applicationID string, t Type, documentID string) string {
	return "applications/" + applicationID + "/" + string(t) + "/" + documentID
}
