package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// AssemblyAPI exposes one method per remote operation. It is safe for
// concurrent use; the cached OAuth token is its only mutable state.
type AssemblyAPI struct {
	config  Configuration
	invoker *Invoker
	oauth   *OAuthRequestHandler
}

type settings struct {
	transport  Transport
	tokenStore TokenStore
	logger     *slog.Logger
	userAgent  string
}

// Option configures an AssemblyAPI.
type Option func(*settings) error

// WithTransport replaces the HTTP transport, e.g. with a test double.
func WithTransport(t Transport) Option {
	return func(s *settings) error {
		if t == nil {
			return fmt.Errorf("transport is nil")
		}
		s.transport = t
		return nil
	}
}

// WithHTTPClient sends requests through client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) error {
		if client == nil {
			return fmt.Errorf("http client is nil")
		}
		s.transport = NewHTTPTransport(client)
		return nil
	}
}

// WithTokenStore persists OAuth tokens outside the process.
func WithTokenStore(store TokenStore) Option {
	return func(s *settings) error {
		s.tokenStore = store
		return nil
	}
}

// WithLogger sets the logger used by the debug handler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) error {
		s.userAgent = ua
		return nil
	}
}

// New validates cfg and wires the handler chain: OAuth, debug logging,
// status mapping, then request signing.
func New(cfg Configuration, opts ...Option) (*AssemblyAPI, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &settings{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.transport == nil {
		s.transport = NewHTTPTransport(newHTTPClient(cfg.Timeout))
	}

	oauth := NewOAuthRequestHandler(cfg, s.transport, s.tokenStore)
	if s.logger != nil {
		oauth.logger = s.logger
	}
	invoker := NewInvoker(s.transport,
		oauth,
		NewDebugLogRequestHandler(cfg, s.logger),
		ApiExceptionRequestHandler{},
		NewAuthWithSignatureRequestHandler(cfg),
	)
	invoker.SetUserAgent(s.userAgent)

	return &AssemblyAPI{
		config:  cfg,
		invoker: invoker,
		oauth:   oauth,
	}, nil
}

// Configuration returns the effective configuration.
func (a *AssemblyAPI) Configuration() Configuration {
	return a.config
}

// AssembleDocument builds a document from the template req.Name and the data
// in req.Data. A missing template yields (nil, nil).
func (a *AssemblyAPI) AssembleDocument(ctx context.Context, req *PostAssembleDocumentRequest) (io.ReadCloser, error) {
	const opName = "AssembleDocument"
	if req == nil {
		return nil, nilRequest(opName)
	}
	if err := req.Validate(); err != nil {
		return nil, &ValidationError{Operation: opName, Err: err}
	}

	saveOptions, err := json.Marshal(req.SaveOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode save options: %w", err)
	}
	form := []FormField{ScalarField{Name: "saveOptions", Value: string(saveOptions)}}
	if req.Data != nil {
		data, err := io.ReadAll(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
		form = append(form, BinaryField{Name: "data", FileName: req.DataFileName, Content: data})
	}

	return a.dispatchBinary(ctx, req, operation{
		name:       opName,
		method:     http.MethodPost,
		path:       "/assembly/{name}/build",
		pathParams: []param{{"name", req.Name}},
		queryParams: []param{
			{"folder", req.Folder},
			{"destFileName", req.DestFileName},
		},
		form:           form,
		absorbNotFound: true,
	})
}
