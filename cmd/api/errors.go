package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// apiError is the JSON body of every error response.
type apiError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *apiError) Error() string { return e.Message }

func (e *apiError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

var (
	errNotFound         = &apiError{StatusCode: http.StatusNotFound, ErrorCode: "NOT_FOUND", Message: "Resource not found"}
	errMethodNotAllowed = &apiError{StatusCode: http.StatusMethodNotAllowed, ErrorCode: "METHOD_NOT_ALLOWED", Message: "Method not allowed"}
	errRateLimited      = &apiError{StatusCode: http.StatusTooManyRequests, ErrorCode: "RATE_LIMITED", Message: "Rate limit exceeded, try again in a few seconds"}
	errUnauthorized     = &apiError{StatusCode: http.StatusUnauthorized, ErrorCode: "UNAUTHORIZED", Message: "Admin key required"}
	errInternal         = &apiError{StatusCode: http.StatusInternalServerError, ErrorCode: "INTERNAL_ERROR", Message: "An unexpected error occurred"}
)

func errInvalidParameter(msg string) *apiError {
	return &apiError{StatusCode: http.StatusBadRequest, ErrorCode: "INVALID_PARAMETER", Message: msg}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func errValidation(err error) *apiError {
	e := &apiError{StatusCode: http.StatusBadRequest, ErrorCode: "VALIDATION_FAILED", Message: "Filter validation failed"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		e.Details = details
	}
	return e
}

func renderError(w http.ResponseWriter, r *http.Request, e *apiError) {
	_ = render.Render(w, r, e)
}
