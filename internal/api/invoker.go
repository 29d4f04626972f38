package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const defaultUserAgent = "assembly-cloud-go"

// Call describes one dispatch. Body is JSON-encoded when non-nil; Form, when
// present, takes precedence and is sent as multipart/form-data.
type Call struct {
	Method string
	URL    string
	Header http.Header
	Body   any
	Form   []FormField
}

// Result is the outcome of a call that reached the server. A 404 is not an
// error at this boundary: NotFound carries it and each façade method decides
// whether to absorb it or return it.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	NotFound   *APIError
}

// Found reports whether the server returned the resource.
func (r *Result) Found() bool {
	return r != nil && r.NotFound == nil
}

// Err returns the 404 as an error, or nil when the resource was found.
func (r *Result) Err() error {
	if r == nil || r.NotFound == nil {
		return nil
	}
	return r.NotFound
}

// Stream returns the body as a reader, or nil when not found.
func (r *Result) Stream() io.ReadCloser {
	if !r.Found() {
		return nil
	}
	return io.NopCloser(bytes.NewReader(r.Body))
}

// Invoker runs calls through the handler chain and the transport.
type Invoker struct {
	transport    Transport
	handlers     []RequestHandler
	userAgent    string
	newRequestID func() string
}

// NewInvoker returns an Invoker that applies handlers in the given order.
func NewInvoker(transport Transport, handlers ...RequestHandler) *Invoker {
	return &Invoker{
		transport:    transport,
		handlers:     handlers,
		userAgent:    defaultUserAgent,
		newRequestID: uuid.NewString,
	}
}

// SetUserAgent overrides the User-Agent sent with every call.
func (inv *Invoker) SetUserAgent(ua string) {
	if ua != "" {
		inv.userAgent = ua
	}
}

// Invoke executes call: before-hooks in chain order, the transport, then
// after-hooks in the same order. The first hook error aborts the call.
func (inv *Invoker) Invoke(ctx context.Context, call Call) (*Result, error) {
	if names := UnresolvedPlaceholders(call.URL); len(names) > 0 {
		return nil, &TemplateError{Template: call.URL, Placeholder: names[0], Reason: "was not substituted"}
	}

	req, err := inv.buildRequest(call)
	if err != nil {
		return nil, err
	}

	for _, h := range inv.handlers {
		if err := h.BeforeRequest(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := inv.transport.Send(ctx, req)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URL, Err: err}
	}
	if resp.Header == nil {
		resp.Header = http.Header{}
	}

	for _, h := range inv.handlers {
		if err := h.AfterResponse(ctx, req, resp); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				return &Result{
					StatusCode: resp.StatusCode,
					Header:     resp.Header,
					Body:       resp.Body,
					NotFound:   apiErr,
				}, nil
			}
			return nil, err
		}
	}

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// InvokeBinary executes call and returns the response body as a stream. A 404
// yields (nil, nil).
func (inv *Invoker) InvokeBinary(ctx context.Context, call Call) (io.ReadCloser, error) {
	res, err := inv.Invoke(ctx, call)
	if err != nil {
		return nil, err
	}
	return res.Stream(), nil
}

func (inv *Invoker) buildRequest(call Call) (*Request, error) {
	header := http.Header{}
	for k, v := range call.Header {
		header[k] = append([]string(nil), v...)
	}
	header.Set("Accept", "application/json")
	header.Set("User-Agent", inv.userAgent)
	if header.Get("X-Request-Id") == "" && inv.newRequestID != nil {
		header.Set("X-Request-Id", inv.newRequestID())
	}

	req := &Request{
		Method: call.Method,
		URL:    call.URL,
		Header: header,
	}

	switch {
	case len(call.Form) > 0:
		body, contentType, err := encodeMultipart(call.Form)
		if err != nil {
			return nil, &ValidationError{Operation: call.Method + " " + call.URL, Err: err}
		}
		req.Body = body
		header.Set("Content-Type", contentType)
	case call.Body != nil:
		body, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Body = body
		header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// decodeJSON decodes a typed response body. An empty body or a shape
// mismatch is a *DeserializationError.
func decodeJSON[T any](res *Result) (*T, error) {
	var out T
	target := fmt.Sprintf("%T", out)
	if len(bytes.TrimSpace(res.Body)) == 0 {
		return nil, &DeserializationError{Target: target, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return nil, &DeserializationError{Target: target, Body: trimBody(res.Body, 256), Err: err}
	}
	return &out, nil
}
