package restoration

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"loan-backoffice/internal/apperror"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	MinReasonLength = 10
	MaxReasonLength = 500
)

var (
	ErrNotFound = apperror.New(
		apperror.CodeNotFound,
		"restoration request not found",
		http.StatusNotFound,
	)
	ErrPendingExists = apperror.New(
		apperror.CodeConflict,
		"a pending restoration request already exists for this application",
		http.StatusConflict,
	)
	ErrAlreadyReviewed = apperror.New(
		apperror.CodeConflict,
		"restoration request has already been reviewed",
		http.StatusConflict,
	)
	ErrInvalidReason = apperror.New(
		apperror.CodeValidationError,
		"reason must be between 10 and 500 characters",
		http.StatusBadRequest,
	)
	ErrNotesRequired = apperror.New(
		apperror.CodeValidationError,
		"review notes are required when rejecting",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeValidationError,
		"status must be one of pending, approved, rejected",
		http.StatusBadRequest,
	)
)

type Request struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	RequestID     string `gorm:"column:request_id;size:32;not null;uniqueIndex:ux_restoration_requests_request_id" json:"request_id"`
	ApplicationID uint64 `gorm:"column:application_id;not null;index:idx_restoration_requests_application" json:"-"`
	// ApplicationRef is the public application id, kept for listings.
	ApplicationRef string `gorm:"column:application_ref;size:32;not null" json:"application_id"`
	// PendingKey holds the application id while pending and NULL afterwards;
	// its unique index allows one pending request per application.
	PendingKey  *uint64 `gorm:"column:pending_key;uniqueIndex:ux_restoration_requests_pending" json:"-"`
	RequestedBy string  `gorm:"column:requested_by;size:32;not null" json:"requested_by"`
	Reason      string  `gorm:"column:reason;type:text;not null" json:"reason"`
	Status      Status  `gorm:"column:status;size:16;not null;default:'pending';index" json:"status"`

	ReviewedBy  *string    `gorm:"column:reviewed_by;size:32" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	ReviewNotes *string    `gorm:"column:review_notes;type:text" json:"review_notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "restoration_requests" }

// NewRequest validates the reason and returns a pending request.
func NewRequest(requestID string, applicationID uint64, applicationRef, requestedBy, reason string) (*Request, error) {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < MinReasonLength || n > MaxReasonLength {
		return nil, ErrInvalidReason
	}
	key := applicationID
	return &Request{
		RequestID:      requestID,
		ApplicationID:  applicationID,
		ApplicationRef: applicationRef,
		PendingKey:     &key,
		RequestedBy:    requestedBy,
		Reason:         reason,
		Status:         StatusPending,
	}, nil
}

// Resolve moves a pending request to its terminal status.
func (r *Request) Resolve(to Status, reviewer, notes string, at time.Time) error {
	if r.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	notes = strings.TrimSpace(notes)
	if to == StatusRejected && notes == "" {
		return ErrNotesRequired
	}
	ts := at.UTC()
	r.Status = to
	r.PendingKey = nil
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &ts
	r.ReviewNotes = &notes
	return nil
}
