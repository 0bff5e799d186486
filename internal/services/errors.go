// Package services provides the business logic layer between handlers and the
// extraction, aggregation and forecasting packages.
package services

import (
	"errors"
	"net/http"
)

// Error codes returned to clients
const (
	CodeMissingParameter    = "MISSING_PARAMETER"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidMethod       = "INVALID_METHOD"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeFetchFailed         = "FETCH_FAILED"
	CodeInternal            = "INTERNAL"
	CodeCooldown            = "COOLDOWN"
	CodeFetchInFlight       = "FETCH_IN_FLIGHT"
	CodeNotFound            = "NOT_FOUND"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	// Status is the HTTP status the error is rendered with
	Status int `json:"-"`
	// Err is the underlying cause, kept for logs only
	Err error `json:"-"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError
func NewServiceError(status int, code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(status int, code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
		Status:  status,
	}
}

// StatusOf returns the HTTP status for err: the ServiceError status when err
// wraps one, 500 otherwise.
func StatusOf(err error) int {
	var se *ServiceError
	if errors.As(err, &se) && se.Status != 0 {
		return se.Status
	}
	return http.StatusInternalServerError
}
