package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/testutil/dbtest"
	"loan-backoffice/internal/usecase/account"
	"loan-backoffice/internal/usecase/application"
	"loan-backoffice/internal/usecase/purge"
	"loan-backoffice/internal/usecase/restoration"
	"loan-backoffice/internal/usecase/softdelete"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_ReturnsOKWithRFC3339NanoUTC(t *testing.T) {
	e := echo.New()
	h := NewHandler(map[string]Pinger{"mysql": func(context.Context) error { return nil }})

	rec := httptest.NewRecorder()
	start := time.Now().UTC()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Time   string            `json:"time"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["mysql"])
	ts, err := time.Parse(time.RFC3339Nano, body.Time)
	require.NoError(t, err)
	assert.False(t, ts.Before(start.Add(-time.Second)))
}

func TestHealth_Degraded(t *testing.T) {
	e := echo.New()
	h := NewHandler(map[string]Pinger{"redis": func(context.Context) error { return errors.New("connection refused") }})

	rec := httptest.NewRecorder()
	require.NoError(t, h.Health(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

type server struct {
	e         *echo.Echo
	env       *dbtest.Env
	applicant authz.Principal
	uw        authz.Principal
	admin     authz.Principal
}

func newServer(t *testing.T, maxUpload int64) *server {
	t.Helper()
	env := dbtest.NewEnv(t)
	_, applicant := env.SeedUser(t, authz.RoleApplicant)
	_, uw := env.SeedUser(t, authz.RoleUnderwriter)
	_, admin := env.SeedUser(t, authz.RoleAdmin)

	sd := softdelete.NewUsecase(env.Deps)
	e := echo.New()
	e.Validator = NewValidator()
	Register(e, Handlers{
		Health:       NewHandler(nil),
		Applications: NewApplicationHandler(application.NewUsecase(env.Deps, env.Blobs), sd, purge.NewUsecase(env.Deps, env.Blobs), maxUpload),
		Accounts:     NewAccountHandler(account.NewUsecase(env.Deps), sd),
		Restorations: NewRestorationHandler(restoration.NewUsecase(env.Deps, "ops@example.test")),
	}, nil)
	return &server{e: e, env: env, applicant: applicant, uw: uw, admin: admin}
}

func (s *server) do(method, path string, p authz.Principal, body any) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if p.UserID != "" {
		r.Header.Set(HeaderUserID, p.UserID)
		r.Header.Set(HeaderUserRole, string(p.Role))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, r)
	return rec
}

func (s *server) upload(appID, docType string, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("doc_type", docType)
	fw, _ := mw.CreateFormFile("file", docType+".pdf")
	_, _ = fw.Write(content)
	_ = mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/applications/"+appID+"/documents", &buf)
	r.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	r.Header.Set(HeaderUserID, s.applicant.UserID)
	r.Header.Set(HeaderUserRole, string(s.applicant.Role))
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, r)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *server) submit(t *testing.T) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/applications", s.applicant, map[string]any{
		"loan_type": "personal", "requested_amount": 7_500_000, "purpose": "school fees", "tenure_months": 12,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[application.ApplicationDTO](t, rec).ApplicationID
}

func TestRoutes_RequirePrincipal(t *testing.T) {
	s := newServer(t, 0)

	rec := s.do(http.MethodGet, "/applications", authz.Principal{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/applications", authz.Principal{UserID: s.applicant.UserID, Role: "root"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", authz.Principal{}, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", authz.Principal{}, nil).Code)
}

func TestSubmit_Validation(t *testing.T) {
	s := newServer(t, 0)

	rec := s.do(http.MethodPost, "/applications", s.applicant, map[string]any{"loan_type": "personal", "requested_amount": 1.005, "tenure_months": 0})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.True(t, hasFieldMsg(resp.Details, "RequestedAmount", "2 decimal places"))
	assert.True(t, hasFieldMsg(resp.Details, "TenureMonths", "is required"))

	rec = s.do(http.MethodPost, "/applications", s.uw, map[string]any{"loan_type": "personal", "requested_amount": 10, "tenure_months": 1})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/applications/NOT-HEX", s.applicant, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/applications/"+strings.Repeat("0", 32), s.applicant, nil).Code)
}

func TestLifecycle_UploadReviewApprove(t *testing.T) {
	s := newServer(t, 0)
	appID := s.submit(t)

	rec := s.upload(appID, "selfie", []byte("x"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var last application.UploadResultDTO
	for _, typ := range document.RequiredTypes() {
		rec := s.upload(appID, string(typ), []byte("%PDF-1.7"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		last = decode[application.UploadResultDTO](t, rec)
	}
	assert.True(t, last.EnteredReview)
	assert.Equal(t, domain.StatusUnderReview, last.Application.Status)

	status := decode[application.DocumentStatusDTO](t, s.do(http.MethodGet, "/applications/"+appID+"/documents", s.applicant, nil))
	assert.True(t, status.Gate.Complete)

	approve := map[string]any{"approved_amount": 7_000_000, "interest_rate": 11.5, "tenure_months": 12, "emi": 620_000}
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/applications/"+appID+"/approve", s.applicant, approve).Code)

	rec = s.do(http.MethodPost, "/applications/"+appID+"/approve", s.uw, approve)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decode[application.ApplicationDTO](t, rec)
	assert.Equal(t, domain.StatusApproved, dto.Status)
	require.NotNil(t, dto.ApprovalDetails)

	rec = s.do(http.MethodPost, "/applications/"+appID+"/reject", s.uw, map[string]any{"reason": "late"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_STATE", decode[ErrorResponse](t, rec).Code)

	rec = s.do(http.MethodDelete, "/applications/"+appID, s.applicant, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	s := newServer(t, 4)
	appID := s.submit(t)

	rec := s.upload(appID, string(document.TypePhoto), []byte("more than four bytes"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, s.env.Blobs.Len())
}

func TestRequestDocuments_Validation(t *testing.T) {
	s := newServer(t, 0)
	appID := s.submit(t)

	rec := s.do(http.MethodPost, "/applications/"+appID+"/request-documents", s.uw, map[string]any{"documents": []string{}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/applications/"+appID+"/request-documents", s.uw, map[string]any{"documents": []string{"payslip"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "pending applications cannot be sent back")
}

func TestRestorationFlow(t *testing.T) {
	s := newServer(t, 0)
	appID := s.submit(t)

	rec := s.do(http.MethodDelete, "/applications/"+appID, s.applicant, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/applications/"+appID, s.applicant, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/applications/"+appID, s.uw, nil).Code)

	path := "/applications/" + appID + "/restoration-requests"
	body := map[string]any{"reason": "applicant deleted this by mistake"}
	rec = s.do(http.MethodPost, path, s.uw, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reqID := decode[map[string]any](t, rec)["request_id"].(string)

	rec = s.do(http.MethodPost, path, s.uw, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	list := decode[[]map[string]any](t, s.do(http.MethodGet, "/restoration-requests?status=pending", s.admin, nil))
	require.Len(t, list, 1)
	assert.Equal(t, appID, list[0]["application_id"])
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodGet, "/restoration-requests?status=archived", s.admin, nil).Code)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/restoration-requests/"+reqID+"/approve", s.uw, map[string]any{}).Code)
	rec = s.do(http.MethodPost, "/restoration-requests/"+reqID+"/approve", s.admin, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/restoration-requests/"+reqID+"/approve", s.admin, map[string]any{}).Code)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/applications/"+appID, s.applicant, nil).Code)
}

func TestPurgeRoute(t *testing.T) {
	s := newServer(t, 0)
	appID := s.submit(t)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodDelete, "/applications/"+appID+"/purge", s.admin, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/applications/"+appID, s.applicant, nil).Code)

	rec := s.do(http.MethodDelete, "/applications/"+appID+"/purge", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/applications/"+appID, s.admin, nil).Code)
}

func TestAccountRoutes(t *testing.T) {
	s := newServer(t, 0)
	appID := s.submit(t)

	rec := s.do(http.MethodPost, "/users", s.admin, map[string]any{"email": "not-an-email", "full_name": "X", "role": "applicant"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = s.do(http.MethodPost, "/users", s.admin, map[string]any{"email": "new@example.test", "full_name": "New", "role": "underwriter"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	uid := s.applicant.UserID
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/"+uid, s.applicant, nil).Code)

	rec = s.do(http.MethodDelete, "/users/"+uid, s.applicant, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[softdelete.CascadeResult](t, rec)
	assert.Equal(t, []string{appID}, res.Affected)

	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/users/"+uid+"/restore", s.uw, nil).Code)
	rec = s.do(http.MethodPost, "/users/"+uid+"/restore", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res = decode[softdelete.CascadeResult](t, rec)
	assert.Equal(t, []string{appID}, res.Affected)
}
