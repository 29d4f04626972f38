package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents machine-readable error codes for CLI and scripting use.
type ErrorCode string

const (
	// ErrBadRequest indicates a malformed request (HTTP 400 and other 4xx).
	ErrBadRequest ErrorCode = "bad_request"
	// ErrUnauthorized indicates credentials or signature were rejected (HTTP 401).
	ErrUnauthorized ErrorCode = "unauthorized"
	// ErrForbidden indicates the application lacks permission (HTTP 403).
	ErrForbidden ErrorCode = "forbidden"
	// ErrNotFound indicates the requested resource does not exist (HTTP 404).
	ErrNotFound ErrorCode = "not_found"
	// ErrValidation indicates a required request field was missing.
	ErrValidation ErrorCode = "validation_failed"
	// ErrServerError indicates a server-side failure (HTTP 5xx).
	ErrServerError ErrorCode = "server_error"
	// ErrTransport indicates the network call could not complete.
	ErrTransport ErrorCode = "transport"
	// ErrDeserialization indicates an unexpected response body.
	ErrDeserialization ErrorCode = "deserialization"
	// ErrUnknown indicates an unknown or unclassified error.
	ErrUnknown ErrorCode = "unknown"
)

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'assembly auth login' and check the App SID and App Key"
	case ErrForbidden:
		return "Check the application permissions for this storage"
	case ErrNotFound:
		return "Verify the file or folder path exists in storage"
	case ErrValidation:
		return "Provide all required arguments"
	case ErrBadRequest:
		return "Check the request format and parameters"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrTransport:
		return "Check network connectivity and the base URL"
	case ErrDeserialization:
		return "The server returned an unexpected response; check the API version"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch {
	case statusCode == 401:
		return ErrUnauthorized
	case statusCode == 403:
		return ErrForbidden
	case statusCode == 404:
		return ErrNotFound
	case statusCode >= 400 && statusCode < 500:
		return ErrBadRequest
	case statusCode >= 500 && statusCode < 600:
		return ErrServerError
	default:
		return ErrUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// MarshalJSON implements custom JSON marshaling.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	return json.Marshal((*Alias)(e))
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.StatusCode)
	ctx := map[string]any{
		"status_code": apiErr.StatusCode,
	}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Message,
		Suggestion: code.Suggestion(),
		Context:    ctx,
	}
}

// StructuredErrorFromError attempts to convert any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return NewStructuredError(ErrUnauthorized, authErr.Error())
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return NewStructuredError(ErrValidation, valErr.Error())
	}

	var tmplErr *TemplateError
	if errors.As(err, &tmplErr) {
		return NewStructuredError(ErrValidation, tmplErr.Error())
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return NewStructuredError(ErrTransport, transportErr.Error())
	}

	var decodeErr *DeserializationError
	if errors.As(err, &decodeErr) {
		return NewStructuredError(ErrDeserialization, decodeErr.Error())
	}

	return &StructuredError{
		Code:    ErrUnknown,
		Message: err.Error(),
	}
}
