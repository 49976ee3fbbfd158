package http

import (
	"net/http"

	"loan-backoffice/internal/apperror"
	"loan-backoffice/pkg/id"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError maps domain errors to their status and stable message.
// Anything else is logged and hidden behind a 500.
func respondError(c echo.Context, err error) error {
	if ae, ok := apperror.From(err); ok && ae.HTTPStatus != 0 {
		return c.JSON(ae.HTTPStatus, ErrorResponse{Error: ae.Message, Code: ae.Code})
	}
	zap.L().Named("http").Error("unhandled error",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: apperror.ErrInternal.Message,
		Code:  apperror.ErrInternal.Code,
	})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: apperror.CodeValidationError})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    apperror.CodeValidationError,
		Details: ToFieldErrors(err),
	})
}

// pathID reads a public id path param; ok is false once a 400 has been written.
func pathID(c echo.Context, name string) (string, bool, error) {
	v := c.Param(name)
	if !id.Valid(v) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "invalid " + name + " path param",
			Code:  apperror.CodeValidationError,
		})
	}
	return v, true, nil
}
