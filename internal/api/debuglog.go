package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/groupdocs/assembly-cloud-go/internal/debug"
)

const maxLoggedBody = 2048

var redactedHeaders = map[string]bool{
	"Authorization": true,
	"Cookie":        true,
	"Set-Cookie":    true,
}

// DebugLogRequestHandler traces requests and responses when debug mode is on,
// either through Configuration.DebugMode or the context flag. Records are
// emitted at info level so the default logger shows them. Logging never
// fails the call.
type DebugLogRequestHandler struct {
	config Configuration
	logger *slog.Logger
}

var _ RequestHandler = DebugLogRequestHandler{}

// NewDebugLogRequestHandler logs to logger, or slog.Default() when nil.
func NewDebugLogRequestHandler(cfg Configuration, logger *slog.Logger) DebugLogRequestHandler {
	return DebugLogRequestHandler{config: cfg, logger: logger}
}

func (h DebugLogRequestHandler) enabled(ctx context.Context) bool {
	return h.config.DebugMode || debug.IsEnabled(ctx)
}

func (h DebugLogRequestHandler) sink() *slog.Logger {
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

// BeforeRequest logs the outgoing request.
func (h DebugLogRequestHandler) BeforeRequest(ctx context.Context, req *Request) error {
	if !h.enabled(ctx) {
		return nil
	}
	defer func() { _ = recover() }()
	h.sink().InfoContext(ctx, "request",
		"method", req.Method,
		"url", formatURL(req.URL),
		"headers", formatHeaders(req.Header),
		"body", formatBody(req.Header, req.Body),
	)
	return nil
}

// AfterResponse logs the incoming response.
func (h DebugLogRequestHandler) AfterResponse(ctx context.Context, req *Request, resp *Response) error {
	if !h.enabled(ctx) {
		return nil
	}
	defer func() { _ = recover() }()
	h.sink().InfoContext(ctx, "response",
		"method", req.Method,
		"url", formatURL(req.URL),
		"status", resp.StatusCode,
		"headers", formatHeaders(resp.Header),
		"body", formatBody(resp.Header, resp.Body),
	)
	return nil
}

// formatURL hides the request signature added in signature auth mode.
func formatURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	if !q.Has("signature") {
		return raw
	}
	q.Set("signature", "redacted")
	u.RawQuery = q.Encode()
	return u.String()
}

func formatHeaders(header http.Header) string {
	if len(header) == 0 {
		return ""
	}
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		value := strings.Join(header[k], ", ")
		if redactedHeaders[http.CanonicalHeaderKey(k)] {
			value = "[redacted]"
		}
		parts = append(parts, k+": "+value)
	}
	return strings.Join(parts, "; ")
}

// formatBody summarizes binary and multipart payloads and truncates text.
func formatBody(header http.Header, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	contentType := ""
	if header != nil {
		contentType = header.Get("Content-Type")
	}
	if strings.HasPrefix(contentType, "multipart/") || !isTextual(contentType, body) {
		return fmt.Sprintf("<%d bytes %s>", len(body), orDefault(contentType, "binary"))
	}
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		return "<form redacted>"
	}
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + fmt.Sprintf("... (%d bytes)", len(body))
	}
	return string(body)
}

func isTextual(contentType string, body []byte) bool {
	switch {
	case strings.HasPrefix(contentType, "text/"),
		strings.Contains(contentType, "json"),
		strings.Contains(contentType, "xml"),
		strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return true
	case contentType == "":
		return utf8.Valid(body)
	default:
		return false
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
