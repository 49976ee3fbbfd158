package http

import (
	"context"
	"net/http"

	"loan-backoffice/internal/domain/authz"
	rest "loan-backoffice/internal/domain/restoration"
	"loan-backoffice/internal/usecase/restoration"

	"github.com/labstack/echo/v4"
)

type RestorationHandler struct{ uc *restoration.Usecase }

func NewRestorationHandler(uc *restoration.Usecase) *RestorationHandler {
	return &RestorationHandler{uc: uc}
}

type restorationReq struct {
	// length is checked in runes by the workflow
	Reason string `json:"reason" validate:"required"`
}

type reviewReq struct {
	Notes string `json:"notes" validate:"max=1000"`
}

type restorationListReq struct {
	Status string `query:"status" validate:"reqstatus"`
}

func (h *RestorationHandler) Request(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	var req restorationReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.Request(c.Request().Context(), principalFrom(c), appID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *RestorationHandler) Approve(c echo.Context) error {
	return h.review(c, h.uc.Approve)
}

func (h *RestorationHandler) Reject(c echo.Context) error {
	return h.review(c, h.uc.Reject)
}

func (h *RestorationHandler) review(c echo.Context, decide func(ctx context.Context, p authz.Principal, requestID, notes string) (*rest.Request, error)) error {
	reqID, ok, err := pathID(c, "request_id")
	if !ok {
		return err
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	out, err := decide(c.Request().Context(), principalFrom(c), reqID, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RestorationHandler) List(c echo.Context) error {
	var req restorationListReq
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.List(c.Request().Context(), principalFrom(c), rest.Status(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RestorationHandler) ListForApplication(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	out, err := h.uc.ListForApplication(c.Request().Context(), principalFrom(c), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
