package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// multipartOverhead covers form boundaries, part headers and the doc_type field.
const multipartOverhead = 1 << 20

// BodyLimit refuses request bodies larger than the upload limit plus
// multipart overhead with 413. It must run before Idempotency, which buffers
// the whole body.
func BodyLimit(maxUploadBytes int64) echo.MiddlewareFunc {
	return echomw.BodyLimit(strconv.FormatInt(maxUploadBytes+multipartOverhead, 10) + "B")
}
