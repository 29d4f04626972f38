package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/debug"
	"github.com/groupdocs/assembly-cloud-go/internal/dryrun"
	"github.com/groupdocs/assembly-cloud-go/internal/iocontext"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

const (
	envOutput       = "ASSEMBLY_OUTPUT"
	envEnvFile      = "ASSEMBLY_ENV_FILE"
	envAllowPrivate = "ASSEMBLY_ALLOW_PRIVATE"
	envTokenCache   = "ASSEMBLY_TOKEN_CACHE"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output       string
	JSON         bool
	Compact      bool
	Query        string
	Template     string
	Debug        bool
	Quiet        bool
	AllowPrivate bool
	Timeout      time.Duration
	Profile      string
	BaseURL      string
	AuthType     string
	TokenCache   string
	Concurrency  int
	DryRun       bool
}

// flags holds the global command flags. It is reset at the start of every
// Execute call; reading it outside a command's RunE sees the previous run.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv(envAllowPrivate),
		Timeout:      api.DefaultTimeout,
		TokenCache:   strings.TrimSpace(os.Getenv(envTokenCache)),
		Concurrency:  DefaultConcurrency,
	}
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv(envOutput)); value != "" {
		return value
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

// loadDotEnv reads ASSEMBLY_ENV_FILE, or .env in the working directory, when
// present. Variables already exported win over the file.
func loadDotEnv() {
	path := strings.TrimSpace(os.Getenv(envEnvFile))
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command. Streams and the local filesystem come from
// ctx (see iocontext.WithIO) so tests can substitute buffers and a MemMapFs.
func Execute(ctx context.Context, args []string) error {
	loadDotEnv()
	flags = defaultFlags()

	streams := iocontext.GetIO(ctx)

	root := &cobra.Command{
		Use:   "assembly",
		Short: "Generate documents from templates with the GroupDocs.Assembly Cloud API",
		Long: strings.TrimSpace(`
assembly builds documents from templates and data through GroupDocs.Assembly
Cloud and manages the files in your cloud storage.

Credentials come from 'assembly auth login', a named --profile, or the
ASSEMBLY_APP_SID and ASSEMBLY_APP_KEY environment variables (also read from a
.env file).`),
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(strings.TrimSpace(flags.Output))
			if err != nil {
				return err
			}
			if flags.Query != "" && mode == outfmt.Text {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--query requires --output json or jsonl")
				}
				mode = outfmt.JSON
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(streams, flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			if flags.Timeout <= 0 {
				return fmt.Errorf("--timeout must be positive")
			}
			if flags.Concurrency <= 0 {
				return fmt.Errorf("--concurrency must be positive")
			}

			cmdIO := *streams
			if flags.Quiet && mode == outfmt.Text {
				cmdIO.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, &cmdIO)
			cmd.SetOut(cmdIO.Out)
			cmd.SetErr(cmdIO.ErrOut)

			validation.SetAllowPrivate(flags.AllowPrivate || parseBoolEnv(envAllowPrivate))

			logger := debug.NewLogger(cmdIO.ErrOut, flags.Debug, mode != outfmt.Text)
			ctx = withLogger(ctx, logger)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl|ndjson (env ASSEMBLY_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render output")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests and responses to stderr")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost base URLs (env ASSEMBLY_ALLOW_PRIVATE)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env ASSEMBLY_PROFILE)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (env ASSEMBLY_BASE_URL)")
	pf.StringVar(&flags.AuthType, "auth-type", "", "Authentication: oauth2|signature (env ASSEMBLY_AUTH_TYPE)")
	pf.StringVar(&flags.TokenCache, "token-cache", flags.TokenCache, "Token cache: file (default), none, a directory, or a redis:// URL (env ASSEMBLY_TOKEN_CACHE)")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Show the storage changes a command would make without sending them")
	pf.IntVar(&flags.Concurrency, "concurrency", flags.Concurrency, "Parallel transfers for multi-file commands")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newFolderCmd())
	root.AddCommand(newFileCmd())
	root.AddCommand(newStorageCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command and
// flag errors. targetCmd is the command Cobra resolved before the error.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		if unknown := extractFlag(msg); unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					for _, name := range []string{"--" + f.Name, "-" + f.Shorthand} {
						if name == "-" || seen[name] {
							continue
						}
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := root.Name() + " --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				helpCmd = targetCmd.CommandPath() + " --help"
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimSpace(s[idx+1:])
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.TrimRight(rest, ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimRight(rest[:end], ".,;:!?\"'")
}

func loadTemplate(streams *iocontext.IO, value string) (string, error) {
	path, ok := strings.CutPrefix(value, "@")
	if !ok {
		return value, nil
	}
	data, err := readLocalFile(streams, path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), nil
}
