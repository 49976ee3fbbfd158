package application

import (
	"io"
	"time"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/document"
)

type SubmitInput struct {
	LoanType        string  `json:"loan_type"`
	RequestedAmount float64 `json:"requested_amount"`
	Purpose         string  `json:"purpose"`
	TenureMonths    int     `json:"tenure_months"`
}

type ListInput struct {
	Status         domain.Status
	IncludeDeleted bool
	OnlyDeleted    bool
	Limit          int
	Offset         int
}

type UploadInput struct {
	ApplicationID string
	DocType       string
	FileName      string
	ContentType   string
	Size          int64
	Body          io.Reader
}

type HistoryDTO struct {
	Status    domain.Status `json:"status"`
	Comment   string        `json:"comment"`
	UpdatedBy string        `json:"updated_by"`
	Timestamp time.Time     `json:"timestamp"`
}

type ApplicationDTO struct {
	ApplicationID                string                  `json:"application_id"`
	UserID                       string                  `json:"user_id"`
	LoanType                     string                  `json:"loan_type"`
	RequestedAmount              float64                 `json:"requested_amount"`
	Purpose                      string                  `json:"purpose"`
	TenureMonths                 int                     `json:"tenure_months"`
	Status                       domain.Status           `json:"status"`
	DocumentsUploaded            bool                    `json:"documents_uploaded"`
	AdditionalDocumentsRequested bool                    `json:"additional_documents_requested"`
	RequestedDocuments           []string                `json:"requested_documents,omitempty"`
	ApprovalDetails              *domain.ApprovalDetails `json:"approval_details,omitempty"`
	RejectionReason              *string                 `json:"rejection_reason,omitempty"`
	IsDeleted                    bool                    `json:"is_deleted"`
	DeletedAt                    *time.Time              `json:"deleted_at,omitempty"`
	StatusHistory                []HistoryDTO            `json:"status_history"`
	CreatedAt                    time.Time               `json:"created_at"`
	UpdatedAt                    time.Time               `json:"updated_at"`
}

type DocumentStatusDTO struct {
	ApplicationID string              `json:"application_id"`
	Gate          document.GateResult `json:"gate"`
	Missing       []document.Type     `json:"missing"`
}

type UploadResultDTO struct {
	DocumentID    string              `json:"document_id"`
	DocType       document.Type       `json:"doc_type"`
	Gate          document.GateResult `json:"gate"`
	EnteredReview bool                `json:"entered_review"`
	Application   *ApplicationDTO     `json:"application"`
}

// ToDTO projects an application for callers; outcome fields follow the status.
func ToDTO(a *domain.LoanApplication) *ApplicationDTO {
	out := a.Outcome()
	dto := &ApplicationDTO{
		ApplicationID:                a.ApplicationID,
		UserID:                       a.UserID,
		LoanType:                     a.LoanType,
		RequestedAmount:              a.RequestedAmount,
		Purpose:                      a.Purpose,
		TenureMonths:                 a.TenureMonths,
		Status:                       a.Status,
		DocumentsUploaded:            a.DocumentsUploaded,
		AdditionalDocumentsRequested: a.AdditionalDocumentsRequested,
		RequestedDocuments:           a.RequestedDocumentList(),
		ApprovalDetails:              out.ApprovalDetails,
		RejectionReason:              out.RejectionReason,
		IsDeleted:                    a.IsDeleted,
		DeletedAt:                    a.DeletedAt,
		StatusHistory:                make([]HistoryDTO, 0, len(a.StatusHistory)),
		CreatedAt:                    a.CreatedAt,
		UpdatedAt:                    a.UpdatedAt,
	}
	for _, h := range a.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, HistoryDTO{
			Status:    h.Status,
			Comment:   h.Comment,
			UpdatedBy: h.UpdatedBy,
			Timestamp: h.Timestamp,
		})
	}
	return dto
}
