package api

import (
	"context"
	"net/url"
	"strings"
	"testing"
)

func TestSign(t *testing.T) {
	got := Sign("https://api.example.com/v1.0/assembly/storage/disc?appsid=sid", "key")
	if got == "" {
		t.Fatal("signature is empty")
	}
	if strings.HasSuffix(got, "=") {
		t.Errorf("signature should not be padded: %s", got)
	}
	if again := Sign("https://api.example.com/v1.0/assembly/storage/disc?appsid=sid", "key"); again != got {
		t.Errorf("signature not deterministic: %s != %s", again, got)
	}
	if other := Sign("https://api.example.com/v1.0/assembly/storage/disc?appsid=sid", "other"); other == got {
		t.Error("different keys should produce different signatures")
	}
}

func TestAuthWithSignatureRequestHandler(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantPrefix string
	}{
		{"no query", "https://x/v1.0/assembly/storage/disc", "https://x/v1.0/assembly/storage/disc?appsid=test-sid&signature="},
		{"existing query", "https://x/v1.0/assembly/storage/disc?storageName=main", "https://x/v1.0/assembly/storage/disc?storageName=main&appsid=test-sid&signature="},
	}

	cfg := testConfig()
	cfg.AuthType = AuthRequestSignature
	h := NewAuthWithSignatureRequestHandler(cfg)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{URL: tt.url}
			if err := h.BeforeRequest(context.Background(), req); err != nil {
				t.Fatalf("BeforeRequest: %v", err)
			}
			if !strings.HasPrefix(req.URL, tt.wantPrefix) {
				t.Fatalf("URL = %s, want prefix %s", req.URL, tt.wantPrefix)
			}

			idx := strings.LastIndex(req.URL, "&signature=")
			signed := req.URL[:idx]
			sig, err := url.QueryUnescape(req.URL[idx+len("&signature="):])
			if err != nil {
				t.Fatalf("unescape: %v", err)
			}
			if want := Sign(signed, "test-key"); sig != want {
				t.Errorf("signature = %s, want %s", sig, want)
			}
		})
	}
}

func TestAuthWithSignatureRequestHandler_OAuthModeNoop(t *testing.T) {
	h := NewAuthWithSignatureRequestHandler(testConfig())
	req := &Request{URL: "https://x/a"}
	if err := h.BeforeRequest(context.Background(), req); err != nil {
		t.Fatalf("BeforeRequest: %v", err)
	}
	if req.URL != "https://x/a" {
		t.Errorf("URL changed in oauth mode: %s", req.URL)
	}
}

func TestSignatureMode_EndToEnd(t *testing.T) {
	spy := newSpyTransport(func(*Request) (*Response, error) {
		return jsonResponse(200, `{"usedSize":10,"totalSize":100}`), nil
	})
	a := newTestAPI(t, spy, withSignature)

	usage, err := a.GetDiscUsage(context.Background(), &GetDiscUsageRequest{StorageName: "main"})
	if err != nil {
		t.Fatalf("GetDiscUsage: %v", err)
	}
	if usage.UsedSize != 10 || usage.TotalSize != 100 {
		t.Errorf("usage = %+v", usage)
	}

	call := spy.lastResourceCall(t)
	u, err := url.Parse(call.URL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("appsid") != "test-sid" {
		t.Errorf("appsid = %q", q.Get("appsid"))
	}
	if q.Get("signature") == "" {
		t.Error("signature missing")
	}
	if q.Get("storageName") != "main" {
		t.Errorf("storageName = %q", q.Get("storageName"))
	}
}
