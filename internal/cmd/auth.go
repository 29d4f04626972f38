package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/cache"
	"github.com/groupdocs/assembly-cloud-go/internal/config"
	"github.com/groupdocs/assembly-cloud-go/internal/iocontext"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
		Long:  "Store GroupDocs Cloud application credentials in your OS keychain under named profiles.",
		Args:  cobra.ArbitraryArgs,
		RunE:  groupRunE,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())
	cmd.AddCommand(newAuthUseCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		appSID      string
		appKey      string
		appKeyStdin bool
		envFile     string
		verify      bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save application credentials",
		Long: strings.TrimSpace(`
Save a GroupDocs Cloud App SID and App Key to your OS keychain.

The global --profile, --base-url, --auth-type and --token-cache flags are
stored with the credentials and used by later commands.`),
		Example: strings.TrimSpace(`
  # Save the default profile
  assembly auth login --app-sid SID --app-key KEY

  # Read the key from stdin and check it against the API
  echo "$KEY" | assembly auth login --app-sid SID --app-key-stdin --verify

  # On-premise server with request signing, saved as "onprem"
  assembly auth login --profile onprem --base-url https://assembly.internal --auth-type signature --app-sid SID --app-key KEY

  # Load ASSEMBLY_* values from a .env file
  assembly auth login --env-file .env`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			streams := iocontext.GetIO(cmd.Context())
			profile := flags.Profile
			baseURL := flags.BaseURL
			authType := flags.AuthType

			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				appSID = firstNonEmpty(appSID, envVars["ASSEMBLY_APP_SID"])
				appKey = firstNonEmpty(appKey, envVars["ASSEMBLY_APP_KEY"])
				baseURL = firstNonEmpty(baseURL, envVars["ASSEMBLY_BASE_URL"])
				authType = firstNonEmpty(authType, envVars["ASSEMBLY_AUTH_TYPE"])
				profile = firstNonEmpty(profile, envVars["ASSEMBLY_PROFILE"])
			}
			if appKeyStdin {
				if appKey != "" {
					return fmt.Errorf("--app-key conflicts with --app-key-stdin")
				}
				data, err := io.ReadAll(streams.In)
				if err != nil {
					return fmt.Errorf("failed to read app key from stdin: %w", err)
				}
				appKey = strings.TrimSpace(string(data))
			}

			if appSID == "" {
				return fmt.Errorf("--app-sid is required")
			}
			if appKey == "" {
				return fmt.Errorf("--app-key is required (or use --app-key-stdin)")
			}

			creds := config.Credentials{
				BaseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
				AppSID:     appSID,
				AppKey:     appKey,
				AuthType:   strings.TrimSpace(authType),
				TokenCache: strings.TrimSpace(flags.TokenCache),
			}

			cfg := api.NewConfiguration(creds.AppSID, creds.AppKey)
			if creds.BaseURL != "" {
				cfg.APIBaseURL = creds.BaseURL
				if err := validation.ValidateBaseURL(creds.BaseURL); err != nil {
					return fmt.Errorf("invalid base URL: %w", err)
				}
			}
			if creds.AuthType != "" {
				cfg.AuthType = api.AuthType(creds.AuthType)
			}
			cfg.Timeout = flags.Timeout
			if err := cfg.Validate(); err != nil {
				return err
			}

			if verify {
				if err := verifyCredentials(cmd, cfg); err != nil {
					return err
				}
			}

			if err := config.SaveProfile(profile, creds); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			result := map[string]any{
				"saved":     true,
				"profile":   profileName(profile),
				"base_url":  cfg.APIBaseURL,
				"auth_type": string(cfg.AuthType),
				"app_sid":   creds.AppSID,
				"verified":  verify,
			}
			return printResult(cmd, result, func(f *outfmt.Formatter) error {
				f.Printf("Credentials saved to profile %q.\n", profileName(profile))
				f.Printf("  Base URL: %s\n", cfg.APIBaseURL)
				f.Printf("  Auth: %s\n", cfg.AuthType)
				if verify {
					f.Printf("  Verified against the API.\n")
				}
				return nil
			})
		}),
	}

	cmd.Flags().StringVar(&appSID, "app-sid", "", "Application SID (client id)")
	cmd.Flags().StringVar(&appKey, "app-key", "", "Application key (client secret)")
	cmd.Flags().BoolVar(&appKeyStdin, "app-key-stdin", false, "Read the application key from stdin")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load ASSEMBLY_* values from a .env file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Make an authenticated call before saving")

	return cmd
}

func verifyCredentials(cmd *cobra.Command, cfg api.Configuration) error {
	opts := []api.Option{api.WithLogger(loggerFrom(cmd.Context()))}
	if httpClient != nil {
		opts = append(opts, api.WithHTTPClient(httpClient))
	}
	client, err := api.New(cfg, opts...)
	if err != nil {
		return err
	}
	if _, err := client.GetDiscUsage(cmd.Context(), nil); err != nil {
		return fmt.Errorf("credentials check failed: %w", err)
	}
	return nil
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}
	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}
	return envVars, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func profileName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Long:  "Display the credentials commands will use. The App Key is masked.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			usingEnv := flags.Profile == "" &&
				strings.TrimSpace(os.Getenv("ASSEMBLY_APP_SID")) != "" &&
				strings.TrimSpace(os.Getenv("ASSEMBLY_APP_KEY")) != ""

			var (
				creds config.Credentials
				err   error
			)
			if flags.Profile != "" {
				creds, err = config.LoadProfile(flags.Profile)
			} else {
				creds, err = config.LoadCredentials()
			}
			if errors.Is(err, config.ErrNotConfigured) {
				result := map[string]any{"authenticated": false}
				return printResult(cmd, result, func(f *outfmt.Formatter) error {
					f.Printf("Not authenticated.\nRun 'assembly auth login' to configure credentials.\n")
					return nil
				})
			}
			if err != nil {
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			source, profile := "keychain", flags.Profile
			if usingEnv {
				source = "env"
			} else if profile == "" {
				profile = os.Getenv("ASSEMBLY_PROFILE")
				if profile == "" {
					profile, _ = config.CurrentProfile()
				}
			}

			baseURL := firstNonEmpty(creds.BaseURL, api.DefaultBaseURL)
			authType := firstNonEmpty(creds.AuthType, string(api.AuthOAuth2))
			result := map[string]any{
				"authenticated": true,
				"source":        source,
				"base_url":      baseURL,
				"auth_type":     authType,
				"app_sid":       creds.AppSID,
				"app_key":       maskToken(creds.AppKey),
			}
			if profile != "" {
				result["profile"] = profile
			}
			if creds.TokenCache != "" {
				result["token_cache"] = maskURLPassword(creds.TokenCache)
			}

			return printResult(cmd, result, func(f *outfmt.Formatter) error {
				f.Printf("Authenticated\n")
				f.Printf("  Base URL: %s\n", baseURL)
				f.Printf("  Auth: %s\n", authType)
				f.Printf("  App SID: %s\n", creds.AppSID)
				f.Printf("  App Key: %s\n", maskToken(creds.AppKey))
				if profile != "" {
					f.Printf("  Profile: %s\n", profile)
				}
				if creds.TokenCache != "" {
					f.Printf("  Token cache: %s\n", maskURLPassword(creds.TokenCache))
				}
				f.Printf("  Source: %s\n", source)
				return nil
			})
		}),
	}
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	var keepTokens bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove a profile from the keychain",
		Long:  "Delete stored credentials (the current profile, or --profile) and cached access tokens.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); errors.Is(err, config.ErrNotConfigured) {
				return printAction(cmd, map[string]any{"removed": false, "profile": profile}, "No credentials found for profile %q.", profile)
			}
			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			if !keepTokens {
				if dir, err := cache.DefaultDir(); err == nil {
					cache.ClearAll(dir)
				}
			}
			return printAction(cmd, map[string]any{"removed": true, "profile": profile}, "Profile %s removed.", profile)
		}),
	}

	cmd.Flags().BoolVar(&keepTokens, "keep-tokens", false, "Keep cached access tokens")
	return cmd
}

// newAuthProfilesCmd lists stored profiles.
func newAuthProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			type entry struct {
				Name    string `json:"name"`
				Current bool   `json:"current"`
			}
			entries := make([]entry, 0, len(profiles))
			for _, p := range profiles {
				entries = append(entries, entry{Name: p, Current: p == current})
			}

			return printResult(cmd, entries, func(f *outfmt.Formatter) error {
				if len(entries) == 0 {
					f.Empty("No profiles found. Run 'assembly auth login' to create one.")
					return nil
				}
				f.StartTable([]string{"PROFILE", "CURRENT"})
				for _, e := range entries {
					mark := ""
					if e.Current {
						mark = "*"
					}
					f.Row(e.Name, mark)
				}
				return f.EndTable()
			})
		}),
	}
}

// newAuthUseCmd switches the current profile.
func newAuthUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Make a stored profile current",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			profile := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(profile); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					return fmt.Errorf("profile %q not found", profile)
				}
				return err
			}
			if err := config.SetCurrentProfile(profile); err != nil {
				return err
			}
			return printAction(cmd, map[string]any{"current": profile}, "Now using profile %s.", profile)
		}),
	}
}

// maskToken masks a secret for display, showing only the first and last 4 characters
func maskToken(token string) string {
	if len(token) < 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// maskURLPassword hides the password of a redis:// URL.
func maskURLPassword(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return raw
	}
	if user, _, hasPass := strings.Cut(userinfo, ":"); hasPass {
		return scheme + "://" + user + ":****@" + host
	}
	return raw
}
