package http

import (
	"net/http"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/usecase/application"
	"loan-backoffice/internal/usecase/purge"
	"loan-backoffice/internal/usecase/softdelete"

	"github.com/labstack/echo/v4"
)

const defaultMaxUploadBytes = 10 << 20

type ApplicationHandler struct {
	uc             *application.Usecase
	softDelete     *softdelete.Usecase
	purge          *purge.Usecase
	maxUploadBytes int64
}

func NewApplicationHandler(uc *application.Usecase, sd *softdelete.Usecase, pg *purge.Usecase, maxUploadBytes int64) *ApplicationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &ApplicationHandler{uc: uc, softDelete: sd, purge: pg, maxUploadBytes: maxUploadBytes}
}

type submitReq struct {
	LoanType        string  `json:"loan_type"        validate:"required,max=64"`
	RequestedAmount float64 `json:"requested_amount" validate:"required,gt=0,dec2"`
	Purpose         string  `json:"purpose"          validate:"max=500"`
	TenureMonths    int     `json:"tenure_months"    validate:"required,gte=1,lte=360"`
}

type listReq struct {
	Status         string `query:"status"          validate:"appstatus"`
	IncludeDeleted bool   `query:"include_deleted"`
	OnlyDeleted    bool   `query:"only_deleted"`
	Limit          int    `query:"limit"           validate:"gte=0,lte=200"`
	Offset         int    `query:"offset"          validate:"gte=0"`
}

type uploadReq struct {
	DocType string `form:"doc_type" validate:"required,doctype"`
}

type approveReq struct {
	ApprovedAmount float64 `json:"approved_amount" validate:"required,gt=0,dec2"`
	InterestRate   float64 `json:"interest_rate"   validate:"gte=0,lte=100,dec2"`
	TenureMonths   int     `json:"tenure_months"   validate:"required,gte=1,lte=360"`
	EMI            float64 `json:"emi"             validate:"required,gt=0,dec2"`
	Comment        string  `json:"comment"         validate:"max=1000"`
}

type rejectReq struct {
	Reason  string `json:"reason"  validate:"required,max=1000"`
	Comment string `json:"comment" validate:"max=1000"`
}

type requestDocumentsReq struct {
	Documents []string `json:"documents" validate:"required,min=1,max=20,dive,required,max=128"`
	Comment   string   `json:"comment"   validate:"max=1000"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Submit(c.Request().Context(), principalFrom(c), application.SubmitInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	var req listReq
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.List(c.Request().Context(), principalFrom(c), application.ListInput{
		Status:         domain.Status(req.Status),
		IncludeDeleted: req.IncludeDeleted,
		OnlyDeleted:    req.OnlyDeleted,
		Limit:          req.Limit,
		Offset:         req.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), principalFrom(c), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) DocumentStatus(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	dto, err := h.uc.DocumentStatus(c.Request().Context(), principalFrom(c), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// UploadDocument takes multipart form fields doc_type and file.
func (h *ApplicationHandler) UploadDocument(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	var req uploadReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing file part"})
	}
	if fh.Size > h.maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return badBody(c)
	}
	defer f.Close()

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	dto, err := h.uc.UploadDocument(c.Request().Context(), principalFrom(c), application.UploadInput{
		ApplicationID: appID,
		DocType:       req.DocType,
		FileName:      fh.Filename,
		ContentType:   contentType,
		Size:          fh.Size,
		Body:          f,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Approve(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Approve(c.Request().Context(), principalFrom(c), appID, domain.ApprovalDetails{
		ApprovedAmount: req.ApprovedAmount,
		InterestRate:   req.InterestRate,
		TenureMonths:   req.TenureMonths,
		EMI:            req.EMI,
	}, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Reject(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Reject(c.Request().Context(), principalFrom(c), appID, req.Reason, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) RequestDocuments(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	var req requestDocumentsReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.RequestDocuments(c.Request().Context(), principalFrom(c), appID, req.Documents, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Delete(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	dto, err := h.softDelete.DeleteApplication(c.Request().Context(), principalFrom(c), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) Purge(c echo.Context) error {
	appID, ok, err := pathID(c, "application_id")
	if !ok {
		return err
	}
	res, err := h.purge.Purge(c.Request().Context(), principalFrom(c), appID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
