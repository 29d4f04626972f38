package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
)

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			info := map[string]any{
				"version":     version,
				"api_version": api.DefaultVersion,
				"go":          runtime.Version(),
			}
			return printResult(cmd, info, func(f *outfmt.Formatter) error {
				f.Printf("assembly-cli version %s (API %s, %s)\n", version, api.DefaultVersion, runtime.Version())
				return nil
			})
		}),
	}
}
