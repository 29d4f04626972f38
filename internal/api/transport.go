package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Request is the outgoing call as seen by the handler chain. Handlers may
// mutate URL, Header and Body in place.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the fully buffered reply from the transport.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs a single network call. Implementations must not
// interpret the status code.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f TransportFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with a net/http client.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport wraps client, or a TLS 1.2+ client with timeout when nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = newHTTPClient(DefaultTimeout)
	}
	return &HTTPTransport{Client: client}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// roundTripper exposes a Transport as an http.RoundTripper so libraries that
// expect an *http.Client (the OAuth token grant) go through the same path.
type roundTripper struct {
	transport Transport
}

func (rt roundTripper) RoundTrip(httpReq *http.Request) (*http.Response, error) {
	var body []byte
	if httpReq.Body != nil {
		var err error
		body, err = io.ReadAll(httpReq.Body)
		_ = httpReq.Body.Close()
		if err != nil {
			return nil, err
		}
	}
	resp, err := rt.transport.Send(httpReq.Context(), &Request{
		Method: httpReq.Method,
		URL:    httpReq.URL.String(),
		Header: httpReq.Header.Clone(),
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	header := resp.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       httpReq,
	}, nil
}
