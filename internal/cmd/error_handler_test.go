package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/config"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"nil", nil, nil},
		{"not configured", config.ErrNotConfigured, []string{"Not authenticated.", "assembly auth login"}},
		{"auth", &api.AuthError{Reason: "invalid_client"}, []string{"Authentication failed: invalid_client", "assembly auth status"}},
		{"api with request id", &api.APIError{StatusCode: 404, Message: "missing", RequestID: "req-9"}, []string{"API error (HTTP 404): missing", "doesn't exist", "Request ID: req-9"}},
		{"wrapped api", fmt.Errorf("ctx: %w", &api.APIError{StatusCode: 503, Message: "down"}), []string{"HTTP 503", "Wait and retry"}},
		{"rate limit", &api.APIError{StatusCode: 429, Message: "slow"}, []string{"Lower --concurrency"}},
		{"validation", &api.ValidationError{Operation: "CreateFolder", Err: errors.New("path: cannot be blank")}, []string{"Invalid request:"}},
		{"decode", &api.DeserializationError{Err: errors.New("bad json")}, []string{"Unexpected response", "--base-url"}},
		{"dns", &api.TransportError{Err: errors.New("dial tcp: lookup nope: no such host")}, []string{"DNS resolution failed."}},
		{"tls", &api.TransportError{Err: errors.New("x509: certificate signed by unknown authority")}, []string{"TLS certificate error."}},
		{"transport", &api.TransportError{Err: errors.New("connection reset")}, []string{"Request failed:", "Increase --timeout"}},
		{"generic", errors.New("boom"), []string{"Error: boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			if tt.want == nil && got != "" {
				t.Fatalf("HandleError(nil) = %q, want empty", got)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("HandleError() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestSuggestionsForStatusCode(t *testing.T) {
	for _, code := range []int{400, 401, 403, 404, 418, 429, 500, 502} {
		t.Run(fmt.Sprintf("status_%d", code), func(t *testing.T) {
			got := suggestionsForStatusCode(code)
			if !strings.HasPrefix(got, "Suggestions:\n") {
				t.Errorf("unexpected suggestions: %q", got)
			}
			if strings.Count(got, "  - ") == 0 {
				t.Errorf("no suggestions for %d", code)
			}
		})
	}
}
