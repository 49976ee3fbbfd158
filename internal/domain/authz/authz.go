// Package authz holds the role model and the capability check every workflow
// operation runs before touching a record.
package authz

import (
	"net/http"

	"loan-backoffice/internal/apperror"
)

type Role string

const (
	RoleApplicant   Role = "applicant"
	RoleUnderwriter Role = "underwriter"
	RoleAdmin       Role = "system_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleUnderwriter, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller as supplied by the auth gateway.
type Principal struct {
	UserID string
	Role   Role
}

type Capability string

const (
	CapSubmitApplication    Capability = "application:submit"
	CapUploadDocument       Capability = "application:upload_document"
	CapDecideApplication    Capability = "application:decide"
	CapDeleteOwnApplication Capability = "application:delete_own"
	CapViewAnyApplication   Capability = "application:view_any"
	CapViewDeleted          Capability = "application:view_deleted"
	CapPurgeApplication     Capability = "application:purge"
	CapDeleteAnyAccount     Capability = "account:delete_any"
	CapRestoreAccount       Capability = "account:restore"
	CapManageAccounts       Capability = "account:manage"
	CapRequestRestoration   Capability = "restoration:request"
	CapReviewRestoration    Capability = "restoration:review"
	CapViewRestorations     Capability = "restoration:view"
)

var ErrForbidden = apperror.New(
	apperror.CodeForbidden,
	"you do not have permission to perform this action",
	http.StatusForbidden,
)

// Authorizer decides whether a principal may exercise a capability.
type Authorizer interface {
	Can(p Principal, c Capability) bool
}

// RolePolicy is the static role → capability table.
type RolePolicy map[Role]map[Capability]bool

func DefaultPolicy() RolePolicy {
	return RolePolicy{
		RoleApplicant: {
			CapSubmitApplication:    true,
			CapUploadDocument:       true,
			CapDeleteOwnApplication: true,
		},
		RoleUnderwriter: {
			CapDecideApplication:  true,
			CapViewAnyApplication: true,
			CapViewDeleted:        true,
			CapRequestRestoration: true,
			CapViewRestorations:   true,
		},
		RoleAdmin: {
			CapViewAnyApplication: true,
			CapViewDeleted:        true,
			CapPurgeApplication:   true,
			CapDeleteAnyAccount:   true,
			CapRestoreAccount:     true,
			CapManageAccounts:     true,
			CapReviewRestoration:  true,
			CapViewRestorations:   true,
		},
	}
}

func (p RolePolicy) Can(pr Principal, c Capability) bool {
	if pr.UserID == "" {
		return false
	}
	return p[pr.Role][c]
}

// Require returns ErrForbidden when the capability is missing.
func Require(a Authorizer, p Principal, c Capability) error {
	if a == nil || !a.Can(p, c) {
		return ErrForbidden
	}
	return nil
}
