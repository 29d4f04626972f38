package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/pflag"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/config"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, exitOK},
		{"help", pflag.ErrHelp, exitOK},
		{"not configured", config.ErrNotConfigured, exitAuth},
		{"auth", &api.AuthError{Reason: "invalid_client"}, exitAuth},
		{"unauthorized", &api.APIError{StatusCode: 401, Message: "bad token"}, exitAuth},
		{"not found", &api.APIError{StatusCode: 404, Message: "not found"}, exitNotFound},
		{"wrapped not found", fmt.Errorf("1 of 2 failed: %w", &api.APIError{StatusCode: 404}), exitNotFound},
		{"forbidden", &api.APIError{StatusCode: 403, Message: "forbidden"}, exitForbidden},
		{"rate limited", &api.APIError{StatusCode: 429, Message: "slow down"}, exitRateLimited},
		{"server", &api.APIError{StatusCode: 500, Message: "oops"}, exitServer},
		{"bad request", &api.APIError{StatusCode: 400, Message: "bad"}, exitUsage},
		{"validation", &api.ValidationError{Operation: "CreateFolder", Err: errors.New("path: cannot be blank")}, exitUsage},
		{"transport", &api.TransportError{Err: errors.New("reset")}, exitNetwork},
		{"usage", errors.New(`unknown command "nope" for "assembly"`), exitUsage},
		{"usage shorthand", errors.New("unknown shorthand flag: 'a' in -a"), exitUsage},
		{"conflict", errors.New("--dest conflicts with --out"), exitUsage},
		{"network", errors.New("dial tcp: connection refused"), exitNetwork},
		{"deadline", context.DeadlineExceeded, exitNetwork},
		{"generic", errors.New("boom"), exitGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.code {
				t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.code)
			}
		})
	}
}

func TestExitCode_HandledErrorUsesStoredCode(t *testing.T) {
	err := &handledError{err: errors.New("wrapped"), exitCode: exitNotFound}
	if got := ExitCode(err); got != exitNotFound {
		t.Fatalf("ExitCode(handled) = %d, want %d", got, exitNotFound)
	}
	if !errors.Is(err, errAlreadyHandled) {
		t.Fatal("handledError should match errAlreadyHandled")
	}
}

func TestExitCode_HandledErrorWithoutCode(t *testing.T) {
	err := &handledError{err: config.ErrNotConfigured}
	if got := ExitCode(err); got != exitAuth {
		t.Fatalf("ExitCode = %d, want %d", got, exitAuth)
	}
}
