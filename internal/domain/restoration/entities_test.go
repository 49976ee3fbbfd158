package restoration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest_ReasonBounds(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		ok     bool
	}{
		{"too short", "short", false},
		{"padded short", "   short   ", false},
		{"min", strings.Repeat("a", MinReasonLength), true},
		{"max", strings.Repeat("a", MaxReasonLength), true},
		{"too long", strings.Repeat("a", MaxReasonLength+1), false},
		{"multibyte counted as runes", strings.Repeat("é", MinReasonLength), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRequest("req", 7, "app", "uw", tc.reason)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrInvalidReason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, r.Status)
			require.NotNil(t, r.PendingKey)
			assert.EqualValues(t, 7, *r.PendingKey)
		})
	}
}

func TestResolve(t *testing.T) {
	at := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	r, err := NewRequest("req", 7, "app", "uw", "please restore this one")
	require.NoError(t, err)

	assert.ErrorIs(t, r.Resolve(StatusRejected, "admin", " ", at), ErrNotesRequired)
	assert.Equal(t, StatusPending, r.Status)

	require.NoError(t, r.Resolve(StatusApproved, "admin", "", at))
	assert.Equal(t, StatusApproved, r.Status)
	assert.Nil(t, r.PendingKey)
	require.NotNil(t, r.ReviewedBy)
	assert.Equal(t, "admin", *r.ReviewedBy)

	assert.ErrorIs(t, r.Resolve(StatusRejected, "admin", "again", at), ErrAlreadyReviewed)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}
