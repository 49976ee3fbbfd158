package application

import (
	"strings"
	"time"

	"loan-backoffice/internal/domain/document"
)

// transitions is the status graph. under_review is only entered through ApplyGate.
var transitions = map[Status][]Status{
	StatusPending:            {StatusUnderReview},
	StatusUnderReview:        {StatusApproved, StatusRejected, StatusDocumentsRequested},
	StatusDocumentsRequested: {StatusUnderReview},
	StatusApproved:           nil,
	StatusRejected:           nil,
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NewApplication builds a pending application with its opening history entry.
func NewApplication(applicationID, userID, loanType string, amount float64, purpose string, tenureMonths int, at time.Time) (*LoanApplication, error) {
	if strings.TrimSpace(loanType) == "" || amount <= 0 || tenureMonths <= 0 {
		return nil, ErrInvalidInput
	}
	a := &LoanApplication{
		ApplicationID:   applicationID,
		UserID:          userID,
		LoanType:        strings.TrimSpace(loanType),
		RequestedAmount: amount,
		Purpose:         strings.TrimSpace(purpose),
		TenureMonths:    tenureMonths,
		Status:          StatusPending,
	}
	a.appendHistory(StatusPending, CommentSubmitted, userID, at)
	return a, nil
}

func (a *LoanApplication) appendHistory(status Status, comment, actor string, at time.Time) StatusHistory {
	h := StatusHistory{
		ApplicationID: a.ID,
		Status:        status,
		Comment:       comment,
		UpdatedBy:     actor,
		Timestamp:     at.UTC(),
	}
	a.StatusHistory = append(a.StatusHistory, h)
	a.appended = append(a.appended, h)
	return h
}

// TakeAppended returns history entries added since the last call, for persistence.
func (a *LoanApplication) TakeAppended() []StatusHistory {
	out := a.appended
	a.appended = nil
	for i := range out {
		out[i].ApplicationID = a.ID
	}
	return out
}

func (a *LoanApplication) transition(to Status, comment, actor string, at time.Time) (StatusHistory, error) {
	if a.IsDeleted {
		return StatusHistory{}, ErrDeleted
	}
	if !CanTransition(a.Status, to) {
		return StatusHistory{}, ErrInvalidTransition
	}
	a.Status = to
	return a.appendHistory(to, comment, actor, at), nil
}

// GateOutcome reports what ApplyGate did.
type GateOutcome struct {
	EnteredReview bool
	FirstReview   bool
}

// ApplyGate records the gate result and moves pending or documents_requested
// applications to under_review once every required document is present.
func (a *LoanApplication) ApplyGate(res document.GateResult, actor string, at time.Time) (GateOutcome, error) {
	if a.IsDeleted {
		return GateOutcome{}, ErrDeleted
	}
	if a.Status == StatusApproved || a.Status == StatusRejected {
		return GateOutcome{}, ErrDocumentsLocked
	}
	a.DocumentsUploaded = res.Complete
	if !res.Complete {
		return GateOutcome{}, nil
	}
	if a.Status != StatusPending && a.Status != StatusDocumentsRequested {
		return GateOutcome{}, nil
	}
	first := !a.HasBeenUnderReview()
	if _, err := a.transition(StatusUnderReview, CommentDocumentsComplete, actor, at); err != nil {
		return GateOutcome{}, err
	}
	return GateOutcome{EnteredReview: true, FirstReview: first}, nil
}

// Decide approves or rejects an application under review.
func (a *LoanApplication) Decide(d Decision, actor string, at time.Time) (StatusHistory, error) {
	if d == nil {
		return StatusHistory{}, ErrInvalidInput
	}
	if err := d.validate(); err != nil {
		return StatusHistory{}, err
	}
	h, err := a.transition(d.target(), d.comment(), actor, at)
	if err != nil {
		return StatusHistory{}, err
	}
	d.apply(a)
	return h, nil
}

// RequestDocuments sends an application back for more paperwork and forces
// the gate to be satisfied again.
func (a *LoanApplication) RequestDocuments(docs []string, comment, actor string, at time.Time) (StatusHistory, error) {
	cleaned := make([]string, 0, len(docs))
	for _, d := range docs {
		if d = strings.TrimSpace(d); d != "" {
			cleaned = append(cleaned, d)
		}
	}
	if len(cleaned) == 0 {
		return StatusHistory{}, ErrRequestedDocumentsRequired
	}
	if comment == "" {
		comment = "Additional documents requested: " + strings.Join(cleaned, ", ")
	}
	h, err := a.transition(StatusDocumentsRequested, comment, actor, at)
	if err != nil {
		return StatusHistory{}, err
	}
	a.DocumentsUploaded = false
	a.AdditionalDocumentsRequested = true
	a.RequestedDocuments = strings.Join(cleaned, "\n")
	return h, nil
}

// SoftDeleteByOwner is the voluntary deletion path.
func (a *LoanApplication) SoftDeleteByOwner(actor string, at time.Time) (StatusHistory, error) {
	if !a.OwnedBy(actor) {
		return StatusHistory{}, ErrNotOwner
	}
	if a.IsDeleted {
		return StatusHistory{}, ErrDeleted
	}
	if a.Status == StatusApproved {
		return StatusHistory{}, ErrApprovedNotDeletable
	}
	return a.markDeleted(DeletionVoluntary, CommentUserDeletion, actor, at), nil
}

// CascadeDelete soft-deletes because the owning account was deleted.
func (a *LoanApplication) CascadeDelete(actor string, at time.Time) (StatusHistory, error) {
	if a.IsDeleted {
		return StatusHistory{}, ErrDeleted
	}
	return a.markDeleted(DeletionAccountCascade, CommentAccountCascadeDeletion, actor, at), nil
}

func (a *LoanApplication) markDeleted(cause DeletionCause, comment, actor string, at time.Time) StatusHistory {
	ts := at.UTC()
	a.IsDeleted = true
	a.DeletedAt = &ts
	a.DeletionCause = &cause
	return a.appendHistory(a.Status, comment, actor, at)
}

// DeletedByAccountCascade reports whether the latest history entry carries the cascade comment.
func (a *LoanApplication) DeletedByAccountCascade() bool {
	last, ok := a.LastHistory()
	return a.IsDeleted && ok && last.Comment == CommentAccountCascadeDeletion
}

// RestoreFromAccount reverses a cascade deletion when the account is restored.
func (a *LoanApplication) RestoreFromAccount(actor string, at time.Time) (StatusHistory, error) {
	if !a.DeletedByAccountCascade() {
		return StatusHistory{}, ErrNotDeleted
	}
	return a.restore(CommentAccountRestored, actor, at), nil
}

// RestoreFromRequest reverses a soft delete through an approved restoration request.
func (a *LoanApplication) RestoreFromRequest(reason, actor string, at time.Time) (StatusHistory, error) {
	if !a.IsDeleted {
		return StatusHistory{}, ErrNotDeleted
	}
	if a.Status == StatusApproved {
		return StatusHistory{}, ErrApprovedNotRestorable
	}
	return a.restore(commentRestoredPrefix+reason, actor, at), nil
}

func (a *LoanApplication) restore(comment, actor string, at time.Time) StatusHistory {
	a.IsDeleted = false
	a.DeletedAt = nil
	a.DeletionCause = nil
	return a.appendHistory(a.Status, comment, actor, at)
}
