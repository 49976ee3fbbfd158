package application

import "loan-backoffice/internal/domain/authz"

// VisibleTo applies the read predicate: applicants see their own live
// applications, staff see all live ones, and staff with view_deleted also see
// soft-deleted ones. Callers turn a false into ErrNotFound so existence is not leaked.
func (a *LoanApplication) VisibleTo(az authz.Authorizer, p authz.Principal) bool {
	if az == nil || p.UserID == "" {
		return false
	}
	if a.IsDeleted && !az.Can(p, authz.CapViewDeleted) {
		return false
	}
	if az.Can(p, authz.CapViewAnyApplication) {
		return true
	}
	return a.OwnedBy(p.UserID)
}
