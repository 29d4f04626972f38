package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// RequestHandler is one link of the dispatch chain. BeforeRequest may mutate
// the outgoing request or abort the call; AfterResponse may reject the
// response by returning an error.
type RequestHandler interface {
	BeforeRequest(ctx context.Context, req *Request) error
	AfterResponse(ctx context.Context, req *Request, resp *Response) error
}

// ApiExceptionRequestHandler converts responses with status >= 400 into
// *APIError.
type ApiExceptionRequestHandler struct{}

var _ RequestHandler = ApiExceptionRequestHandler{}

// BeforeRequest is a no-op.
func (ApiExceptionRequestHandler) BeforeRequest(context.Context, *Request) error {
	return nil
}

// AfterResponse returns an *APIError for any status >= 400.
func (ApiExceptionRequestHandler) AfterResponse(_ context.Context, _ *Request, resp *Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.StatusCode, resp.Body),
		RequestID:  requestIDFromHeader(resp.Header),
	}
}

// errorMessage extracts a readable message from an error body. JSON bodies
// carrying error/message fields use those; other non-empty bodies are used
// verbatim (truncated); empty bodies fall back to the status text.
func errorMessage(status int, body []byte) string {
	var errResp struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Upper   string          `json:"Message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if msg := nestedErrorMessage(errResp.Error); msg != "" {
			return msg
		}
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Upper != "" {
			return errResp.Upper
		}
	}
	if text := trimBody(body, 512); text != "" {
		return text
	}
	if statusText := http.StatusText(status); statusText != "" {
		return strings.ToLower(statusText)
	}
	return "API request failed"
}

// nestedErrorMessage accepts both {"error":"text"} and
// {"error":{"message":"text"}}.
func nestedErrorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Upper   string `json:"Message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Upper
	}
	return ""
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	return header.Get("X-Request-Id")
}
