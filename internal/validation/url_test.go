package validation

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
)

func stubResolver(t *testing.T, addrs map[string][]string) {
	t.Helper()
	orig := lookupIP
	lookupIP = func(_ context.Context, host string) ([]net.IP, error) {
		raw, ok := addrs[host]
		if !ok {
			return nil, errors.New("no such host")
		}
		ips := make([]net.IP, 0, len(raw))
		for _, r := range raw {
			ips = append(ips, net.ParseIP(r))
		}
		return ips, nil
	}
	t.Cleanup(func() { lookupIP = orig })
}

func withAllowPrivate(t *testing.T, enabled bool) {
	t.Helper()
	prev := AllowPrivateEnabled()
	SetAllowPrivate(enabled)
	t.Cleanup(func() { SetAllowPrivate(prev) })
}

func TestValidateBaseURL(t *testing.T) {
	withAllowPrivate(t, false)
	stubResolver(t, map[string][]string{
		"api.groupdocs.cloud": {"52.1.2.3"},
		"internal.corp":       {"10.0.0.5"},
		"mixed.example":       {"52.1.2.3", "192.168.1.1"},
	})

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"public https", "https://api.groupdocs.cloud", ""},
		{"public with path", "https://api.groupdocs.cloud/", ""},
		{"unresolvable", "https://not-live-yet.example", ""},
		{"empty", "", "cannot be empty"},
		{"ftp scheme", "ftp://api.groupdocs.cloud", "invalid URL scheme"},
		{"no host", "https://", "hostname"},
		{"credentials", "https://user:pw@api.groupdocs.cloud", "credentials"},
		{"query", "https://api.groupdocs.cloud?x=1", "query"},
		{"localhost", "http://localhost:8080", "localhost"},
		{"loopback ip", "http://127.0.0.2", "loopback"},
		{"private ip", "http://192.168.0.10", "private"},
		{"metadata host", "http://metadata.google.internal", "metadata"},
		{"metadata ip", "http://169.254.169.254", "metadata"},
		{"resolves private", "https://internal.corp", "forbidden IP"},
		{"any resolved private", "https://mixed.example", "192.168.1.1"},
		{"too long", "https://a.example/" + strings.Repeat("x", MaxURLLength), "maximum length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateBaseURL(%q) = %v", tt.url, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateBaseURL(%q) = %v, want error containing %q", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBaseURL_AllowPrivate(t *testing.T) {
	withAllowPrivate(t, true)
	stubResolver(t, map[string][]string{"internal.corp": {"10.0.0.5"}})

	for _, ok := range []string{"http://localhost:8080", "http://127.0.0.1:9000", "https://internal.corp"} {
		if err := ValidateBaseURL(ok); err != nil {
			t.Errorf("ValidateBaseURL(%q) = %v with private hosts allowed", ok, err)
		}
	}
	for _, bad := range []string{"http://169.254.169.254", "http://metadata", "http://[fe80::1]"} {
		if err := ValidateBaseURL(bad); err == nil {
			t.Errorf("ValidateBaseURL(%q) should stay blocked", bad)
		}
	}
}
