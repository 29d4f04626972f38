package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a response with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// AuthError represents a failure to obtain credentials for a request.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ValidationError reports a client-side check that failed before any
// network activity.
type ValidationError struct {
	Operation string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s request: %v", e.Operation, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError wraps a failure of the underlying network call.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeserializationError reports a response body that did not match the
// expected shape.
type DeserializationError struct {
	Target string
	Body   string
	Err    error
}

func (e *DeserializationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unexpected API response format for %s", e.Target)
	}
	return fmt.Sprintf("unexpected API response format for %s: %v", e.Target, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// TemplateError reports a resource path placeholder that is missing or was
// never substituted.
type TemplateError struct {
	Template    string
	Placeholder string
	Reason      string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("path template %q: {%s} %s", e.Template, e.Placeholder, e.Reason)
}

// IsNotFoundError checks if the error is an API 404.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsAuthError checks if the error is an authentication failure, either while
// obtaining a token or reported by the server.
func IsAuthError(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// IsValidationError checks if the error was raised before dispatch.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsTransportError checks if the network call itself failed.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsDeserializationError checks if a response could not be decoded.
func IsDeserializationError(err error) bool {
	var e *DeserializationError
	return errors.As(err, &e)
}

func trimBody(body []byte, limit int) string {
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
