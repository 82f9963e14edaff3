package utils

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to the dashboard. The kind decides both the HTTP
// status and the message shown to the user.
const (
	KindAuthenticationFailed = "AuthenticationFailed"
	KindConnectionFailed     = "ConnectionFailed"
	KindExecutionFailed      = "ExecutionFailed"
	KindNoSession            = "NoSession"
	KindUnknownNode          = "UnknownNode"
	KindValidation           = "Validation"
)

type APIError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func NewAuthError(err error) *APIError {
	return &APIError{
		Code:    1001,
		Kind:    KindAuthenticationFailed,
		Message: "Incorrect username or password",
		cause:   err,
	}
}

func NewConnectionError(node string, err error) *APIError {
	msg := "Connection failed"
	if node != "" {
		msg = fmt.Sprintf("Connection failed for node %s", node)
	}
	return &APIError{
		Code:    1002,
		Kind:    KindConnectionFailed,
		Message: msg,
		Details: errDetails(err),
		cause:   err,
	}
}

func NewExecutionError(node string, err error) *APIError {
	return &APIError{
		Code:    1003,
		Kind:    KindExecutionFailed,
		Message: fmt.Sprintf("Error fetching details for node %s", node),
		Details: errDetails(err),
		cause:   err,
	}
}

func NewNoSessionError() *APIError {
	return &APIError{
		Code:    1004,
		Kind:    KindNoSession,
		Message: "No credentials provided. Please log in again.",
	}
}

func NewUnknownNodeError(node string) *APIError {
	return &APIError{
		Code:    3001,
		Kind:    KindUnknownNode,
		Message: fmt.Sprintf("Unknown node: %s", node),
	}
}

func NewValidationError(field string, value interface{}) *APIError {
	return &APIError{
		Code:    3002,
		Kind:    KindValidation,
		Message: fmt.Sprintf("Invalid value for %s", field),
		Details: fmt.Sprintf("%v", value),
	}
}

// IsKind reports whether err is, or wraps, an *APIError of the given kind.
func IsKind(err error, kind string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
