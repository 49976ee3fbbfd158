package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"loan-backoffice/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	// HeaderUserID is the caller identity forwarded by the auth gateway.
	HeaderUserID = "X-User-Id"
)

const (
	// in-progress marker lifetime when the handler never finishes
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second
)

// teeWriter copies the response body while passing it through.
type teeWriter struct {
	http.ResponseWriter
	body bytes.Buffer
	code int
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func outcome(name string) { metrics.IdempotencyOutcomes.WithLabelValues(name).Inc() }

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// Idempotency replays the stored response for a repeated mutating request
// carrying the same Ax-Request-Id from the same user on the same path.
// 5xx responses are not stored so the client may retry with the same id.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, logger ...*zap.Logger) echo.MiddlewareFunc {
	log := zap.L().Named("idempotency")
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0].Named("idempotency")
	}
	store := replayStore{rdb: rdb, lockTTL: provisionalLockTTL, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			hdr, herr := readReplayHeaders(req.Header, time.Now().UTC())
			if herr != nil {
				outcome("rejected")
				return fail(c, herr.status, herr.msg)
			}

			var body []byte
			if req.Body != nil {
				b, err := io.ReadAll(req.Body)
				if err != nil {
					// BodyLimit's reader reports an oversized body as a 413 HTTPError
					outcome("rejected")
					return err
				}
				body = b
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			digest := bodyDigest(body)

			key := replayKey(req.Method, req.URL.Path, hdr.userID, hdr.requestID)
			entry := replayEntry{
				InProgress:  true,
				BodySHA256:  digest,
				RequestID:   hdr.requestID,
				RequestAtMS: hdr.requestAt.UnixMilli(),
				CreatedAt:   time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			claimed, err := store.claim(ctx, key, entry)
			if err != nil {
				cancel()
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				outcome("unavailable")
				return fail(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				cur, err := store.load(ctx, key)
				cancel()
				if err != nil {
					log.Warn("idempotency entry load failed", zap.String("key", key), zap.Error(err))
				}
				switch {
				case cur.BodySHA256 != "" && cur.BodySHA256 != digest:
					outcome("body_mismatch")
					return fail(c, http.StatusConflict, HeaderRequestID+" reused with different body")
				case !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0:
					log.Debug("idempotent replay", zap.String("key", key), zap.Int("code", cur.Code))
					outcome("replayed")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				default:
					outcome("in_progress")
					return fail(c, http.StatusConflict, "request is already in progress")
				}
			}
			cancel()

			tee := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the handler has already answered; finish bookkeeping even if the client left
			sctx, scancel := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer scancel()
			if tee.code >= http.StatusInternalServerError {
				if err := store.release(sctx, key); err != nil {
					log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				outcome("released")
				return nil
			}
			entry.InProgress = false
			entry.Code = tee.code
			entry.Body = tee.body.Bytes()
			entry.CreatedAt = time.Now().UTC()
			if err := store.complete(sctx, key, entry); err != nil {
				log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
			}
			outcome("stored")
			return nil
		}
	}
}
