package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/cache"
	"github.com/groupdocs/assembly-cloud-go/internal/config"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

const (
	tokenCacheFile = "file"
	tokenCacheNone = "none"
)

// httpClient is the client every command uses; tests point it at httptest.
var httpClient *http.Client

type clientFactory struct {
	overrides config.Overrides
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		overrides: config.Overrides{
			Profile:    flags.Profile,
			BaseURL:    flags.BaseURL,
			AuthType:   flags.AuthType,
			TokenCache: flags.TokenCache,
			Timeout:    flags.Timeout,
			Debug:      flags.Debug,
		},
		userAgent: fmt.Sprintf("assembly-cli/%s", version),
	}
}

// client resolves credentials and builds the API client. The returned
// closer releases the token store and must be called when the command ends.
func (f *clientFactory) client(ctx context.Context) (*api.AssemblyAPI, io.Closer, error) {
	resolved, err := config.Resolve(f.overrides)
	if err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateBaseURL(resolved.API.APIBaseURL); err != nil {
		return nil, nil, fmt.Errorf("invalid base URL: %w", err)
	}

	store, closer, err := openTokenStore(resolved.TokenCache)
	if err != nil {
		return nil, nil, err
	}

	opts := []api.Option{
		api.WithUserAgent(f.userAgent),
		api.WithLogger(loggerFrom(ctx)),
	}
	if store != nil {
		opts = append(opts, api.WithTokenStore(store))
	}
	if httpClient != nil {
		opts = append(opts, api.WithHTTPClient(httpClient))
	}

	client, err := api.New(resolved.API, opts...)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return client, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openTokenStore picks the token cache named by spec: "" or "file" for the
// per-user cache directory, "none" to disable, a redis:// URL for a shared
// cache, or any other value as a cache directory.
func openTokenStore(spec string) (api.TokenStore, io.Closer, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.EqualFold(spec, tokenCacheNone):
		return nil, nopCloser{}, nil
	case strings.HasPrefix(spec, "redis://") || strings.HasPrefix(spec, "rediss://"):
		store, err := cache.NewRedisStoreFromURL(spec)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case spec == "" || strings.EqualFold(spec, tokenCacheFile):
		dir, err := cache.DefaultDir()
		if err != nil {
			return nil, nopCloser{}, nil
		}
		return cache.NewFileStore(dir), nopCloser{}, nil
	default:
		return cache.NewFileStore(spec), nopCloser{}, nil
	}
}

// withClient builds a client for the duration of fn.
func withClient(ctx context.Context, fn func(client *api.AssemblyAPI) error) error {
	client, closer, err := newClientFactory().client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return fn(client)
}
