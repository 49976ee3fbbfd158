package application

import (
	"net/http"

	"loan-backoffice/internal/apperror"
)

var (
	ErrNotFound = apperror.New(
		apperror.CodeNotFound,
		"loan application not found",
		http.StatusNotFound,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"status transition is not allowed from the current status",
		http.StatusUnprocessableEntity,
	)
	ErrDeleted = apperror.New(
		apperror.CodeInvalidState,
		"loan application is deleted",
		http.StatusUnprocessableEntity,
	)
	ErrNotDeleted = apperror.New(
		apperror.CodeInvalidState,
		"loan application is not deleted",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedNotDeletable = apperror.New(
		apperror.CodeInvalidState,
		"approved loan applications cannot be deleted",
		http.StatusUnprocessableEntity,
	)
	ErrDocumentsLocked = apperror.New(
		apperror.CodeInvalidState,
		"documents cannot be uploaded after a decision",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedNotRestorable = apperror.New(
		apperror.CodeInvalidState,
		"approved loan applications cannot be restored through a restoration request",
		http.StatusUnprocessableEntity,
	)
	ErrApprovedNotPurgeable = apperror.New(
		apperror.CodeInvalidState,
		"approved loan applications cannot be purged",
		http.StatusUnprocessableEntity,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the applicant who owns this application can do this",
		http.StatusForbidden,
	)
	ErrInvalidInput = apperror.New(
		apperror.CodeValidationError,
		"invalid loan application input",
		http.StatusBadRequest,
	)
	ErrInvalidApprovalDetails = apperror.New(
		apperror.CodeValidationError,
		"approval details must have a positive amount, tenure and emi and a non-negative rate",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeValidationError,
		"rejection reason is required",
		http.StatusBadRequest,
	)
	ErrRequestedDocumentsRequired = apperror.New(
		apperror.CodeValidationError,
		"at least one requested document is required",
		http.StatusBadRequest,
	)
)
