package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
)

const testBaseURL = "https://api.example.com"

// spyTransport records every request and answers token grants itself.
type spyTransport struct {
	mu          sync.Mutex
	calls       []Request
	tokenCalls  int
	tokenStatus int
	tokenBody   string
	handle      func(req *Request) (*Response, error)
}

func newSpyTransport(handle func(req *Request) (*Response, error)) *spyTransport {
	return &spyTransport{
		tokenStatus: http.StatusOK,
		tokenBody:   `{"access_token":"token-1","token_type":"bearer","expires_in":3600}`,
		handle:      handle,
	}
}

func (s *spyTransport) Send(_ context.Context, req *Request) (*Response, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Request{
		Method: req.Method,
		URL:    req.URL,
		Header: req.Header.Clone(),
		Body:   append([]byte(nil), req.Body...),
	})
	isToken := strings.HasSuffix(req.URL, "/connect/token")
	if isToken {
		s.tokenCalls++
	}
	status, body := s.tokenStatus, s.tokenBody
	s.mu.Unlock()

	if isToken {
		return &Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       []byte(body),
		}, nil
	}
	if s.handle == nil {
		return jsonResponse(http.StatusOK, `{}`), nil
	}
	return s.handle(req)
}

func (s *spyTransport) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyTransport) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenCalls
}

// resourceCalls returns the requests that were not token grants.
func (s *spyTransport) resourceCalls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, c := range s.calls {
		if !strings.HasSuffix(c.URL, "/connect/token") {
			out = append(out, c)
		}
	}
	return out
}

func (s *spyTransport) lastResourceCall(t *testing.T) Request {
	t.Helper()
	calls := s.resourceCalls()
	if len(calls) == 0 {
		t.Fatal("expected at least one resource call")
	}
	return calls[len(calls)-1]
}

func jsonResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
	}
}

func statusResponse(status int) func(*Request) (*Response, error) {
	return func(*Request) (*Response, error) {
		return jsonResponse(status, `{"error":{"message":"`+strings.ToLower(http.StatusText(status))+`"}}`), nil
	}
}

func testConfig() Configuration {
	cfg := NewConfiguration("test-sid", "test-key")
	cfg.APIBaseURL = testBaseURL
	return cfg
}

func newTestAPI(t *testing.T, transport Transport, mutate ...func(*Configuration)) *AssemblyAPI {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	a, err := New(cfg, WithTransport(transport))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func withSignature(cfg *Configuration) {
	cfg.AuthType = AuthRequestSignature
}
