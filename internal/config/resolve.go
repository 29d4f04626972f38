package config

import (
	"strings"
	"time"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
)

// Overrides are command-line values that win over stored credentials and
// the environment.
type Overrides struct {
	Profile    string // loads this profile instead of the environment or current one
	BaseURL    string
	AuthType   string
	TokenCache string
	Timeout    time.Duration
	Debug      bool
}

// Resolved is the client configuration after merging every source.
type Resolved struct {
	API        api.Configuration
	TokenCache string
}

// Resolve merges stored credentials, environment and overrides, in that
// order of precedence, and validates the result.
func Resolve(o Overrides) (Resolved, error) {
	var (
		creds Credentials
		err   error
	)
	if o.Profile != "" {
		creds, err = LoadProfile(o.Profile)
	} else {
		creds, err = LoadCredentials()
	}
	if err != nil {
		return Resolved{}, err
	}

	cfg := api.NewConfiguration(creds.AppSID, creds.AppKey)
	if creds.BaseURL != "" {
		cfg.APIBaseURL = creds.BaseURL
	}
	if creds.AuthType != "" {
		cfg.AuthType = api.AuthType(creds.AuthType)
	}
	tokenCache := creds.TokenCache

	if env := firstNonBlankEnv(envBaseURL); env != "" {
		cfg.APIBaseURL = strings.TrimSuffix(env, "/")
	}

	if o.BaseURL != "" {
		cfg.APIBaseURL = strings.TrimSuffix(o.BaseURL, "/")
	}
	if o.AuthType != "" {
		cfg.AuthType = api.AuthType(o.AuthType)
	}
	if o.TokenCache != "" {
		tokenCache = o.TokenCache
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	cfg.DebugMode = o.Debug

	if err := cfg.Validate(); err != nil {
		return Resolved{}, err
	}
	return Resolved{API: cfg, TokenCache: tokenCache}, nil
}
