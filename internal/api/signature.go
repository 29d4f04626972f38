package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"strings"
)

// AuthWithSignatureRequestHandler signs the request URL for endpoint families
// that predate token auth: appsid is appended to the query, the full URL is
// signed with HMAC-SHA1 keyed by AppKey, and the unpadded base64 digest is
// appended as signature.
type AuthWithSignatureRequestHandler struct {
	config Configuration
}

var _ RequestHandler = AuthWithSignatureRequestHandler{}

// NewAuthWithSignatureRequestHandler returns a signing handler for cfg.
func NewAuthWithSignatureRequestHandler(cfg Configuration) AuthWithSignatureRequestHandler {
	return AuthWithSignatureRequestHandler{config: cfg}
}

// BeforeRequest rewrites req.URL with appsid and signature parameters.
func (h AuthWithSignatureRequestHandler) BeforeRequest(_ context.Context, req *Request) error {
	if h.config.AuthType != AuthRequestSignature {
		return nil
	}
	signed := AddQueryParameterToURL(req.URL, "appsid", h.config.AppSID)
	signature := Sign(signed, h.config.AppKey)
	sep := "&"
	if !strings.Contains(signed, "?") {
		sep = "?"
	}
	req.URL = signed + sep + "signature=" + url.QueryEscape(signature)
	return nil
}

// AfterResponse is a no-op.
func (AuthWithSignatureRequestHandler) AfterResponse(context.Context, *Request, *Response) error {
	return nil
}

// Sign returns the unpadded base64 HMAC-SHA1 of data keyed by key.
func Sign(data, key string) string {
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(data))
	return strings.TrimRight(base64.StdEncoding.EncodeToString(mac.Sum(nil)), "=")
}
