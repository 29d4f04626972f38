package api

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	DefaultBaseURL = "https://api.groupdocs.cloud"
	DefaultVersion = "v1.0"
	DefaultTimeout = 100 * time.Second
)

// AuthType selects which authentication handler is active.
type AuthType string

const (
	// AuthOAuth2 attaches a bearer token obtained with the client-credentials grant.
	AuthOAuth2 AuthType = "oauth2"
	// AuthRequestSignature signs each URL with the application key.
	AuthRequestSignature AuthType = "signature"
)

// Configuration holds the connection settings shared by the façade, the
// invoker and every handler. It is copied by value on construction and never
// mutated afterwards.
type Configuration struct {
	APIBaseURL string
	AppSID     string
	AppKey     string
	DebugMode  bool
	AuthType   AuthType
	Version    string
	Timeout    time.Duration
}

// NewConfiguration returns a Configuration with defaults for everything but
// the application credentials.
func NewConfiguration(appSID, appKey string) Configuration {
	return Configuration{
		APIBaseURL: DefaultBaseURL,
		AppSID:     appSID,
		AppKey:     appKey,
		AuthType:   AuthOAuth2,
		Version:    DefaultVersion,
		Timeout:    DefaultTimeout,
	}
}

func (c Configuration) withDefaults() Configuration {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultBaseURL
	}
	if c.AuthType == "" {
		c.AuthType = AuthOAuth2
	}
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func (c Configuration) baseURL() string {
	return strings.TrimRight(c.APIBaseURL, "/")
}

// APIRootURL returns the versioned root every resource path hangs off.
func (c Configuration) APIRootURL() string {
	return c.baseURL() + "/" + strings.Trim(c.Version, "/")
}

// TokenURL returns the OAuth authorization endpoint.
func (c Configuration) TokenURL() string {
	return c.baseURL() + "/connect/token"
}

// Validate checks that the configuration can be used to reach the API.
func (c Configuration) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.APIBaseURL, validation.Required, is.URL, validation.By(httpScheme)),
		validation.Field(&c.AppSID, validation.Required),
		validation.Field(&c.AppKey, validation.Required),
		validation.Field(&c.AuthType, validation.In(AuthOAuth2, AuthRequestSignature)),
	)
	if err != nil {
		return &ValidationError{Operation: "Configuration", Err: err}
	}
	return nil
}

func httpScheme(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "http://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	return nil
}
