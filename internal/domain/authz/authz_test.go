package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	applicant := Principal{UserID: "a", Role: RoleApplicant}
	underwriter := Principal{UserID: "u", Role: RoleUnderwriter}
	admin := Principal{UserID: "s", Role: RoleAdmin}

	tests := []struct {
		who  Principal
		cap  Capability
		want bool
	}{
		{applicant, CapSubmitApplication, true},
		{applicant, CapDeleteOwnApplication, true},
		{applicant, CapDecideApplication, false},
		{applicant, CapViewDeleted, false},
		{applicant, CapRequestRestoration, false},
		{underwriter, CapDecideApplication, true},
		{underwriter, CapRequestRestoration, true},
		{underwriter, CapReviewRestoration, false},
		{underwriter, CapPurgeApplication, false},
		{admin, CapReviewRestoration, true},
		{admin, CapPurgeApplication, true},
		{admin, CapRestoreAccount, true},
		{admin, CapDecideApplication, false},
		{admin, CapSubmitApplication, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, p.Can(tc.who, tc.cap), "%s %s", tc.who.Role, tc.cap)
	}
}

func TestCan_RequiresIdentity(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.Can(Principal{Role: RoleAdmin}, CapPurgeApplication))
	assert.False(t, p.Can(Principal{UserID: "x", Role: "root"}, CapPurgeApplication))
}

func TestRequire(t *testing.T) {
	p := DefaultPolicy()
	assert.NoError(t, Require(p, Principal{UserID: "s", Role: RoleAdmin}, CapPurgeApplication))
	assert.ErrorIs(t, Require(p, Principal{UserID: "a", Role: RoleApplicant}, CapPurgeApplication), ErrForbidden)
	assert.ErrorIs(t, Require(nil, Principal{UserID: "s", Role: RoleAdmin}, CapPurgeApplication), ErrForbidden)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUnderwriter.Valid())
	assert.False(t, Role("auditor").Valid())
}
