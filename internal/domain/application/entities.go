package application

import (
	"time"
)

type Status string

const (
	StatusPending            Status = "pending"
	StatusUnderReview        Status = "under_review"
	StatusApproved           Status = "approved"
	StatusRejected           Status = "rejected"
	StatusDocumentsRequested Status = "documents_requested"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusDocumentsRequested:
		return true
	}
	return false
}

type DeletionCause string

const (
	DeletionVoluntary      DeletionCause = "voluntary"
	DeletionAccountCascade DeletionCause = "account_cascade"
)

// History comments written by the soft-delete cascade. Account restoration
// matches CommentAccountCascadeDeletion exactly against the latest entry.
const (
	CommentSubmitted              = "Application submitted"
	CommentDocumentsComplete      = "All required documents uploaded"
	CommentUserDeletion           = "Application deleted by user"
	CommentAccountCascadeDeletion = "Application deleted due to account deletion"
	CommentAccountRestored        = "Application restored due to account restoration"
	commentRestoredPrefix         = "Application restored via restoration request: "
)

type LoanApplication struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string `gorm:"column:application_id;size:32;not null;uniqueIndex:ux_applications_application_id" json:"application_id"`
	UserID        string `gorm:"column:user_id;size:32;not null;index:idx_applications_user" json:"user_id"`

	LoanType        string  `gorm:"column:loan_type;size:64;not null" json:"loan_type"`
	RequestedAmount float64 `gorm:"column:requested_amount;type:decimal(18,2);not null" json:"requested_amount"`
	Purpose         string  `gorm:"column:purpose;type:text" json:"purpose"`
	TenureMonths    int     `gorm:"column:tenure_months;not null" json:"tenure_months"`

	Status                       Status `gorm:"column:status;size:32;not null;default:'pending';index" json:"status"`
	DocumentsUploaded            bool   `gorm:"column:documents_uploaded;not null;default:false" json:"documents_uploaded"`
	AdditionalDocumentsRequested bool   `gorm:"column:additional_documents_requested;not null;default:false" json:"additional_documents_requested"`
	RequestedDocuments           string `gorm:"column:requested_documents;type:text" json:"-"`

	// Outcome columns; written only through Decide.
	ApprovedAmount  *float64 `gorm:"column:approved_amount;type:decimal(18,2)" json:"-"`
	InterestRate    *float64 `gorm:"column:interest_rate;type:decimal(6,4)" json:"-"`
	ApprovedTenure  *int     `gorm:"column:approved_tenure_months" json:"-"`
	EMI             *float64 `gorm:"column:emi;type:decimal(18,2)" json:"-"`
	RejectionReason *string  `gorm:"column:rejection_reason;type:text" json:"-"`

	IsDeleted     bool           `gorm:"column:is_deleted;not null;default:false;index" json:"is_deleted"`
	DeletedAt     *time.Time     `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	DeletionCause *DeletionCause `gorm:"column:deletion_cause;size:32" json:"deletion_cause,omitempty"`

	StatusHistory []StatusHistory `gorm:"foreignKey:ApplicationID;references:ID" json:"status_history"`
	appended      []StatusHistory

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LoanApplication) TableName() string { return "loan_applications" }

// StatusHistory is one append-only audit entry. Rows are never updated.
type StatusHistory struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID uint64    `gorm:"column:application_id;not null;index:idx_status_history_application" json:"-"`
	Status        Status    `gorm:"column:status;size:32;not null" json:"status"`
	Comment       string    `gorm:"column:comment;type:text" json:"comment"`
	UpdatedBy     string    `gorm:"column:updated_by;size:32" json:"updated_by"`
	Timestamp     time.Time `gorm:"column:changed_at;not null" json:"timestamp"`
}

func (StatusHistory) TableName() string { return "application_status_history" }

// LastHistory returns the most recent entry, if any.
func (a *LoanApplication) LastHistory() (StatusHistory, bool) {
	if len(a.StatusHistory) == 0 {
		return StatusHistory{}, false
	}
	return a.StatusHistory[len(a.StatusHistory)-1], true
}

// HasBeenUnderReview reports whether under_review was ever entered.
func (a *LoanApplication) HasBeenUnderReview() bool {
	for _, h := range a.StatusHistory {
		if h.Status == StatusUnderReview {
			return true
		}
	}
	return false
}

func (a *LoanApplication) OwnedBy(userID string) bool { return a.UserID == userID }
