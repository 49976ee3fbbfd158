package http

import (
	"net/http"

	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/usecase/account"
	"loan-backoffice/internal/usecase/softdelete"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	uc         *account.Usecase
	softDelete *softdelete.Usecase
}

func NewAccountHandler(uc *account.Usecase, sd *softdelete.Usecase) *AccountHandler {
	return &AccountHandler{uc: uc, softDelete: sd}
}

type registerReq struct {
	Email    string `json:"email"     validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Role     string `json:"role"      validate:"required,oneof=applicant underwriter system_admin"`
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	u, err := h.uc.Register(c.Request().Context(), principalFrom(c), account.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     authz.Role(req.Role),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *AccountHandler) Get(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	u, err := h.uc.Get(c.Request().Context(), principalFrom(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AccountHandler) Delete(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	res, err := h.softDelete.DeleteUser(c.Request().Context(), principalFrom(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AccountHandler) Restore(c echo.Context) error {
	userID, ok, err := pathID(c, "user_id")
	if !ok {
		return err
	}
	res, err := h.softDelete.RestoreUser(c.Request().Context(), principalFrom(c), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
