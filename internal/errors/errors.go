package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeInvalidCredentials ErrorCode = "AUTH-001"
	ErrCodeSessionExpired     ErrorCode = "AUTH-002"
	ErrCodeNotLoggedIn        ErrorCode = "AUTH-003"
	ErrCodeRefreshFailed      ErrorCode = "AUTH-004"
	ErrCodeForbidden          ErrorCode = "AUTH-005"

	// Permission errors (PERM-001 to PERM-099)
	ErrCodePermissionDenied       ErrorCode = "PERM-001"
	ErrCodePermissionsRateLimited ErrorCode = "PERM-002"

	// API errors (API-001 to API-099)
	ErrCodeAPIUnreachable    ErrorCode = "API-001"
	ErrCodeAPIStatus         ErrorCode = "API-002"
	ErrCodeValidationFailed  ErrorCode = "API-003"
	ErrCodeResponseMalformed ErrorCode = "API-004"

	// Configuration errors (CFG-001 to CFG-099)
	ErrCodeConfigNotFound ErrorCode = "CFG-001"
	ErrCodeConfigInvalid  ErrorCode = "CFG-002"

	// Session storage errors (STORE-001 to STORE-099)
	ErrCodeStoreReadFailed  ErrorCode = "STORE-001"
	ErrCodeStoreWriteFailed ErrorCode = "STORE-002"
)

// NexctlError represents an enhanced error with code and suggestions
type NexctlError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *NexctlError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *NexctlError) Unwrap() error {
	return e.Cause
}

// New creates a new NexctlError
func New(code ErrorCode, message string) *NexctlError {
	return &NexctlError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new NexctlError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *NexctlError {
	return &NexctlError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *NexctlError) WithSuggestion(suggestion string) *NexctlError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *NexctlError) WithSuggestions(suggestions ...string) *NexctlError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewInvalidCredentialsError creates a login failure error.
// The backend's error body is deliberately not echoed: the message stays
// generic so nothing about which part of the credentials was wrong leaks out.
func NewInvalidCredentialsError(cause error) *NexctlError {
	return &NexctlError{
		Code:    ErrCodeInvalidCredentials,
		Message: "invalid email, password or tenant",
		Cause:   cause,
		Suggestions: []string{
			"Check your credentials and try again",
			"Use --tenant if your account lives outside the root tenant",
		},
	}
}

// NewSessionExpiredError creates a session expiry error
func NewSessionExpiredError() *NexctlError {
	return New(ErrCodeSessionExpired, "your session has expired").
		WithSuggestion("Run 'nexctl login' to authenticate again")
}

// NewNotLoggedInError creates a not-authenticated error
func NewNotLoggedInError() *NexctlError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'nexctl login' to authenticate")
}

// NewPermissionDeniedError creates a missing-permission error
func NewPermissionDeniedError(permission string) *NexctlError {
	return New(ErrCodePermissionDenied, fmt.Sprintf("missing permission: %s", permission)).
		WithSuggestion("Ask an administrator to grant the permission to your role").
		WithSuggestion("Run 'nexctl permissions' to see what you have been granted")
}

// NewAPIUnreachableError creates a transport-level failure error
func NewAPIUnreachableError(baseURL string, cause error) *NexctlError {
	return Wrap(ErrCodeAPIUnreachable, fmt.Sprintf("cannot reach identity backend at %s", baseURL), cause).
		WithSuggestion("Check that the backend is running and the URL is correct").
		WithSuggestion("Set NEXCTL_API_URL or api_url in ~/.nexctl/config.yaml")
}

// NewValidationError creates an error from backend validation detail.
// detail is the structured message extracted from the response body; when the
// body was not parseable the caller passes an empty string and a generic
// message is used instead.
func NewValidationError(detail string) *NexctlError {
	if detail == "" {
		detail = "the backend rejected the request"
	}
	return New(ErrCodeValidationFailed, detail).
		WithSuggestion("Check the submitted values and try again")
}

// NewConfigInvalidError creates a configuration parse error
func NewConfigInvalidError(path string, cause error) *NexctlError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration file: %s", path), cause).
		WithSuggestion("Fix the YAML syntax or delete the file to fall back to defaults")
}
