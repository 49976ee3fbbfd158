package http

import (
	"errors"
	"math"

	"loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/domain/restoration"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

// CustomValidator plugs go-playground/validator into echo with the
// back-office tags registered.
type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// money and rates carry at most 2 decimal places
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})
	_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
		_, ok := document.ParseType(fl.Field().String())
		return ok
	})
	// empty means "any" for list filters
	_ = v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		s := application.Status(fl.Field().String())
		return s == "" || s.Valid()
	})
	_ = v.RegisterValidation("reqstatus", func(fl validator.FieldLevel) bool {
		s := restoration.Status(fl.Field().String())
		return s == "" || s.Valid()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

var tagMessages = map[string]func(param string) string{
	"required":  func(string) string { return "is required" },
	"dec2":      func(string) string { return "must have at most 2 decimal places" },
	"doctype":   func(string) string { return "must be a known document type" },
	"appstatus": func(string) string { return "must be a known application status" },
	"reqstatus": func(string) string { return "must be pending, approved or rejected" },
	"email":     func(string) string { return "must be a valid email address" },
	"gt":        func(p string) string { return "must be greater than " + p },
	"gte":       func(p string) string { return "must be greater than or equal to " + p },
	"lte":       func(p string) string { return "must be less than or equal to " + p },
	"min":       func(p string) string { return "must have at least " + p + " entries or characters" },
	"max":       func(p string) string { return "must have at most " + p + " entries or characters" },
	"oneof":     func(p string) string { return "must be one of " + p },
}

// ToFieldErrors turns validator errors into per-field messages. Anything else
// becomes a single "_" entry.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		msg := fe.Tag() + " validation failed"
		if f, ok := tagMessages[fe.Tag()]; ok {
			msg = f(fe.Param())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
