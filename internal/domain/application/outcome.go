package application

import (
	"strings"
)

// ApprovalDetails is the approved offer. EMI is supplied by the underwriter.
type ApprovalDetails struct {
	ApprovedAmount float64 `json:"approved_amount"`
	InterestRate   float64 `json:"interest_rate"`
	TenureMonths   int     `json:"tenure_months"`
	EMI            float64 `json:"emi"`
}

func (d ApprovalDetails) validate() error {
	if d.ApprovedAmount <= 0 || d.InterestRate < 0 || d.TenureMonths <= 0 || d.EMI <= 0 {
		return ErrInvalidApprovalDetails
	}
	return nil
}

// Decision is an underwriter verdict. Only Approval and Rejection implement it,
// so approval details cannot be attached to a rejection and vice versa.
type Decision interface {
	target() Status
	apply(a *LoanApplication)
	validate() error
	comment() string
}

type Approval struct {
	Details ApprovalDetails
	Comment string
}

func (Approval) target() Status { return StatusApproved }
func (d Approval) validate() error { return d.Details.validate() }
func (d Approval) comment() string { return d.Comment }
func (d Approval) apply(a *LoanApplication) {
	amt, rate, tenure, emi := d.Details.ApprovedAmount, d.Details.InterestRate, d.Details.TenureMonths, d.Details.EMI
	a.ApprovedAmount, a.InterestRate, a.ApprovedTenure, a.EMI = &amt, &rate, &tenure, &emi
	a.RejectionReason = nil
}

type Rejection struct {
	Reason  string
	Comment string
}

func (Rejection) target() Status { return StatusRejected }
func (d Rejection) validate() error {
	if strings.TrimSpace(d.Reason) == "" {
		return ErrRejectionReasonRequired
	}
	return nil
}
func (d Rejection) comment() string {
	if d.Comment != "" {
		return d.Comment
	}
	return d.Reason
}
func (d Rejection) apply(a *LoanApplication) {
	reason := strings.TrimSpace(d.Reason)
	a.RejectionReason = &reason
	a.ApprovedAmount, a.InterestRate, a.ApprovedTenure, a.EMI = nil, nil, nil, nil
}

// Outcome is the read-side projection of the verdict columns.
type Outcome struct {
	ApprovalDetails *ApprovalDetails `json:"approval_details,omitempty"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
}

func (a *LoanApplication) Outcome() Outcome {
	var o Outcome
	switch a.Status {
	case StatusApproved:
		if a.ApprovedAmount != nil && a.InterestRate != nil && a.ApprovedTenure != nil && a.EMI != nil {
			o.ApprovalDetails = &ApprovalDetails{
				ApprovedAmount: *a.ApprovedAmount,
				InterestRate:   *a.InterestRate,
				TenureMonths:   *a.ApprovedTenure,
				EMI:            *a.EMI,
			}
		}
	case StatusRejected:
		o.RejectionReason = a.RejectionReason
	}
	return o
}

// RequestedDocumentList splits the stored newline-separated list.
func (a *LoanApplication) RequestedDocumentList() []string {
	if a.RequestedDocuments == "" {
		return nil
	}
	return strings.Split(a.RequestedDocuments, "\n")
}
