package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/dryrun"
	"github.com/groupdocs/assembly-cloud-go/internal/iocontext"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
)

// errAlreadyHandled marks an error RunE has already printed. Cobra still
// sees a failure (for the exit code) but Execute does not print it again.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() []error {
	return []error{errAlreadyHandled, e.err}
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var handled *handledError
		if errors.As(err, &handled) {
			return err
		}
		streams := iocontext.GetIO(cmd.Context())
		if isJSON(cmd) {
			if structured := api.StructuredErrorFromError(err); structured != nil {
				_ = outfmt.WriteJSON(streams.ErrOut, structured, outfmt.IsCompact(cmd.Context()))
			}
		} else {
			_, _ = fmt.Fprint(streams.ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// groupRunE lets a parent command report an unknown subcommand (with
// suggestions) instead of silently printing help.
func groupRunE(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}

func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func formatter(cmd *cobra.Command) *outfmt.Formatter {
	streams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), streams.Out, streams.ErrOut)
}

// printResult renders v through the formatter when output is structured and
// otherwise calls text to print the human form.
func printResult(cmd *cobra.Command, v any, text func(f *outfmt.Formatter) error) error {
	f := formatter(cmd)
	if f.Structured() {
		return f.Output(v)
	}
	return text(f)
}

// printAction reports a completed mutation.
func printAction(cmd *cobra.Command, result map[string]any, format string, args ...any) error {
	return printResult(cmd, result, func(f *outfmt.Formatter) error {
		f.Printf(format+"\n", args...)
		return nil
	})
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// readLocalFile reads path from the command filesystem; "-" reads stdin.
func readLocalFile(streams *iocontext.IO, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(streams.In)
	}
	return afero.ReadFile(streams.FS, path)
}

// openLocalFile opens path for streaming; "-" is stdin.
func openLocalFile(streams *iocontext.IO, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(streams.In), nil
	}
	return streams.FS.Open(path)
}

// writeLocalFile copies r to path, creating parent directories. "-" writes
// to stdout. Data lands in "<path>.part" and is renamed once complete.
func writeLocalFile(streams *iocontext.IO, path string, r io.Reader) (int64, error) {
	if path == "-" {
		return io.Copy(streams.Out, r)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := streams.FS.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}
	tmp := path + ".part"
	f, err := streams.FS.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = streams.FS.Remove(tmp)
		return n, err
	}
	return n, streams.FS.Rename(tmp, path)
}

// drain consumes r and returns the number of bytes read.
func drain(r io.Reader) (int64, error) {
	return io.Copy(io.Discard, r)
}

// previewMutation prints previews and reports true when --dry-run is set, in
// which case the caller returns without contacting the API.
func previewMutation(cmd *cobra.Command, previews ...*dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	f := formatter(cmd)
	if f.Structured() {
		if len(previews) == 1 {
			return true, f.Output(previews[0])
		}
		return true, f.Output(previews)
	}
	for _, p := range previews {
		p.Write(cmd.OutOrStdout())
	}
	return true, nil
}
