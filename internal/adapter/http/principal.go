package http

import (
	"net/http"
	"strings"

	"loan-backoffice/internal/apperror"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/pkg/id"

	"github.com/labstack/echo/v4"
)

// Set by the upstream auth gateway; the service trusts them as given.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
)

const principalKey = "principal"

// PrincipalMiddleware rejects requests without a usable identity with 401.
func PrincipalMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			role := authz.Role(strings.TrimSpace(c.Request().Header.Get(HeaderUserRole)))
			if !id.Valid(uid) || !role.Valid() {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error: apperror.ErrUnauthorized.Message,
					Code:  apperror.ErrUnauthorized.Code,
				})
			}
			c.Set(principalKey, authz.Principal{UserID: uid, Role: role})
			return next(c)
		}
	}
}

// principalFrom returns the zero Principal when the middleware did not run,
// which every capability check refuses.
func principalFrom(c echo.Context) authz.Principal {
	p, _ := c.Get(principalKey).(authz.Principal)
	return p
}
