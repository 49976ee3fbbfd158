package id

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns a random UUID as 32 lowercase hex characters.
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Valid reports whether s has the public id shape: 32 lowercase hex characters.
func Valid(s string) bool {
	if len(s) != 32 || strings.ToLower(s) != s {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
