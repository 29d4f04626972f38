package api

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// expiryDelta refreshes tokens slightly before the server would reject them.
const expiryDelta = 10 * time.Second

// TokenStore persists tokens beyond the lifetime of one OAuthRequestHandler,
// e.g. between CLI invocations. Load returns (nil, nil) on a miss.
type TokenStore interface {
	Load(ctx context.Context, key string) (*oauth2.Token, error)
	Save(ctx context.Context, key string, token *oauth2.Token) error
	Delete(ctx context.Context, key string) error
}

// tokenCache holds the one mutable value of a façade instance. All access
// goes through getOrRefresh, which keeps the lock for the duration of a
// refresh so concurrent callers never fetch twice or see a half-written token.
type tokenCache struct {
	mu    sync.Mutex
	token *oauth2.Token
	now   func() time.Time
}

func newTokenCache() *tokenCache {
	return &tokenCache{now: time.Now}
}

func (c *tokenCache) valid(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	if tok.Expiry.IsZero() {
		return true
	}
	return c.now().Add(expiryDelta).Before(tok.Expiry)
}

func (c *tokenCache) getOrRefresh(ctx context.Context, fetch func(context.Context) (*oauth2.Token, error)) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid(c.token) {
		return c.token, nil
	}
	tok, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.token = tok
	return tok, nil
}

// invalidate drops the cached token if it is still the one that was rejected.
func (c *tokenCache) invalidate(accessToken string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.AccessToken == accessToken {
		c.token = nil
		return true
	}
	return false
}

// OAuthRequestHandler attaches a bearer token obtained with the
// client-credentials grant, refreshing it on expiry.
type OAuthRequestHandler struct {
	config    Configuration
	transport Transport
	store     TokenStore
	cache     *tokenCache
	logger    *slog.Logger
}

var _ RequestHandler = (*OAuthRequestHandler)(nil)

// NewOAuthRequestHandler returns a handler that fetches tokens through
// transport. store may be nil.
func NewOAuthRequestHandler(cfg Configuration, transport Transport, store TokenStore) *OAuthRequestHandler {
	return &OAuthRequestHandler{
		config:    cfg,
		transport: transport,
		store:     store,
		cache:     newTokenCache(),
		logger:    slog.Default(),
	}
}

// BeforeRequest attaches Authorization: Bearer <token>.
func (h *OAuthRequestHandler) BeforeRequest(ctx context.Context, req *Request) error {
	if h.config.AuthType != AuthOAuth2 {
		return nil
	}
	tok, err := h.cache.getOrRefresh(ctx, h.fetch)
	if err != nil {
		return err
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	return nil
}

// AfterResponse forgets a token the server rejected with 401 so the next
// call fetches a new one. The current call is not repeated.
func (h *OAuthRequestHandler) AfterResponse(ctx context.Context, req *Request, resp *Response) error {
	if h.config.AuthType != AuthOAuth2 || resp.StatusCode != http.StatusUnauthorized {
		return nil
	}
	sent := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	if h.cache.invalidate(sent) && h.store != nil {
		if err := h.store.Delete(ctx, h.storeKey()); err != nil {
			h.logger.Debug("token store delete failed", "error", err)
		}
	}
	return nil
}

func (h *OAuthRequestHandler) fetch(ctx context.Context) (*oauth2.Token, error) {
	key := h.storeKey()
	if h.store != nil {
		tok, err := h.store.Load(ctx, key)
		if err != nil {
			h.logger.Debug("token store load failed", "error", err)
		} else if h.cache.valid(tok) {
			return tok, nil
		}
	}

	cc := clientcredentials.Config{
		ClientID:     h.config.AppSID,
		ClientSecret: h.config.AppKey,
		TokenURL:     h.config.TokenURL(),
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	httpClient := &http.Client{
		Transport: roundTripper{transport: h.transport},
		Timeout:   h.config.Timeout,
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, httpClient))
	if err != nil {
		return nil, &AuthError{Reason: tokenFailureReason(err), Err: err}
	}

	if h.store != nil {
		if err := h.store.Save(ctx, key, tok); err != nil {
			h.logger.Debug("token store save failed", "error", err)
		}
	}
	return tok, nil
}

// storeKey covers the full credential set; a different key never sees
// another key's token.
func (h *OAuthRequestHandler) storeKey() string {
	sum := sha1.Sum([]byte(h.config.baseURL() + "|" + h.config.AppSID + "|" + h.config.AppKey))
	return "oauth_" + hex.EncodeToString(sum[:6])
}

func tokenFailureReason(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		if retrieveErr.ErrorCode != "" {
			return fmt.Sprintf("token request rejected (status %d): %s", status, retrieveErr.ErrorCode)
		}
		return fmt.Sprintf("token request rejected (status %d)", status)
	}
	return fmt.Sprintf("token request failed: %v", err)
}
