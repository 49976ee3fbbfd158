package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"loan-backoffice/pkg/id"
)

var reUUID = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[1-5][a-f0-9]{3}-[89ab][a-f0-9]{3}-[a-f0-9]{12}$`)

// replayHeaders are the caller-supplied values that scope one idempotent request.
type replayHeaders struct {
	requestID string
	requestAt time.Time
	userID    string
}

// headerError carries the status the middleware answers with.
type headerError struct {
	status int
	msg    string
}

func (e *headerError) Error() string { return e.msg }

func readReplayHeaders(h http.Header, now time.Time) (replayHeaders, *headerError) {
	var out replayHeaders

	out.requestID = strings.TrimSpace(h.Get(HeaderRequestID))
	switch {
	case out.requestID == "":
		return out, &headerError{http.StatusBadRequest, "missing " + HeaderRequestID}
	case !reUUID.MatchString(out.requestID) && !id.Valid(out.requestID):
		return out, &headerError{http.StatusBadRequest, "invalid " + HeaderRequestID + " format"}
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return out, &headerError{http.StatusBadRequest, err.Error()}
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return out, &headerError{http.StatusBadRequest, HeaderRequestAt + " too skewed"}
	}
	out.requestAt = at

	out.userID = strings.TrimSpace(h.Get(HeaderUserID))
	if !id.Valid(out.userID) {
		return out, &headerError{http.StatusUnauthorized, "missing or invalid " + HeaderUserID}
	}
	return out, nil
}

// parseRequestAt takes epoch seconds, epoch milliseconds or RFC3339 with a zone.
func parseRequestAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("missing " + HeaderRequestAt)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.New(HeaderRequestAt + " must be epoch (s/ms) or RFC3339 with timezone")
	}
	return t.UTC(), nil
}

func bodyDigest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// replayKey scopes a stored response to the concrete path, so a reused request
// id aimed at another resource is not answered with the first one's response.
func replayKey(method, path, userID, requestID string) string {
	return strings.Join([]string{"idemp", "loan", strings.ToLower(method), path, userID, requestID}, ":")
}
