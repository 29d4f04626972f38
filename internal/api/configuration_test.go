package api

import (
	"strings"
	"testing"
	"time"
)

func TestNewConfiguration_Defaults(t *testing.T) {
	cfg := NewConfiguration("sid", "key")
	if cfg.APIBaseURL != DefaultBaseURL {
		t.Errorf("APIBaseURL = %s", cfg.APIBaseURL)
	}
	if cfg.AuthType != AuthOAuth2 {
		t.Errorf("AuthType = %s", cfg.AuthType)
	}
	if cfg.Version != "v1.0" {
		t.Errorf("Version = %s", cfg.Version)
	}
	if cfg.Timeout != 100*time.Second {
		t.Errorf("Timeout = %s", cfg.Timeout)
	}
	if cfg.DebugMode {
		t.Error("DebugMode should default to false")
	}
}

func TestConfiguration_URLs(t *testing.T) {
	cfg := Configuration{APIBaseURL: "https://api.example.com/", Version: "/v2.0/"}
	if got := cfg.APIRootURL(); got != "https://api.example.com/v2.0" {
		t.Errorf("APIRootURL() = %s", got)
	}
	if got := cfg.TokenURL(); got != "https://api.example.com/connect/token" {
		t.Errorf("TokenURL() = %s", got)
	}
}

func TestConfiguration_WithDefaults(t *testing.T) {
	cfg := Configuration{AppSID: "sid", AppKey: "key"}.withDefaults()
	if cfg.APIBaseURL != DefaultBaseURL || cfg.AuthType != AuthOAuth2 || cfg.Version != DefaultVersion || cfg.Timeout != DefaultTimeout {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	custom := Configuration{APIBaseURL: "http://localhost:8080", Timeout: time.Second}.withDefaults()
	if custom.APIBaseURL != "http://localhost:8080" || custom.Timeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", custom)
	}
}

func TestConfiguration_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{"valid", func(*Configuration) {}, ""},
		{"valid signature", func(c *Configuration) { c.AuthType = AuthRequestSignature }, ""},
		{"valid localhost", func(c *Configuration) { c.APIBaseURL = "http://localhost:8080" }, ""},
		{"missing sid", func(c *Configuration) { c.AppSID = "" }, "AppSID"},
		{"missing key", func(c *Configuration) { c.AppKey = "" }, "AppKey"},
		{"bad scheme", func(c *Configuration) { c.APIBaseURL = "ftp://files.example.com" }, "http://"},
		{"not a url", func(c *Configuration) { c.APIBaseURL = "not a url" }, "APIBaseURL"},
		{"unknown auth", func(c *Configuration) { c.AuthType = "basic" }, "AuthType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfiguration("sid", "key")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
