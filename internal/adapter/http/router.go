package http

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health       *Handler
	Applications *ApplicationHandler
	Accounts     *AccountHandler
	Restorations *RestorationHandler
}

// Register mounts every route. idem guards mutating routes and may be nil.
func Register(e *echo.Echo, h Handlers, idem echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	mw := []echo.MiddlewareFunc{PrincipalMiddleware()}
	if idem != nil {
		mw = append(mw, idem)
	}
	api := e.Group("", mw...)

	api.POST("/applications", h.Applications.Submit)
	api.GET("/applications", h.Applications.List)
	api.GET("/applications/:application_id", h.Applications.Get)
	api.DELETE("/applications/:application_id", h.Applications.Delete)
	api.GET("/applications/:application_id/documents", h.Applications.DocumentStatus)
	api.POST("/applications/:application_id/documents", h.Applications.UploadDocument)
	api.POST("/applications/:application_id/approve", h.Applications.Approve)
	api.POST("/applications/:application_id/reject", h.Applications.Reject)
	api.POST("/applications/:application_id/request-documents", h.Applications.RequestDocuments)
	api.DELETE("/applications/:application_id/purge", h.Applications.Purge)

	api.POST("/applications/:application_id/restoration-requests", h.Restorations.Request)
	api.GET("/applications/:application_id/restoration-requests", h.Restorations.ListForApplication)
	api.GET("/restoration-requests", h.Restorations.List)
	api.POST("/restoration-requests/:request_id/approve", h.Restorations.Approve)
	api.POST("/restoration-requests/:request_id/reject", h.Restorations.Reject)

	api.POST("/users", h.Accounts.Register)
	api.GET("/users/:user_id", h.Accounts.Get)
	api.DELETE("/users/:user_id", h.Accounts.Delete)
	api.POST("/users/:user_id/restore", h.Accounts.Restore)
}
