package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
)

// newStorageCmd creates the storage command group
func newStorageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect cloud storage",
		Args:  cobra.ArbitraryArgs,
		RunE:  groupRunE,
	}

	cmd.AddCommand(newStorageExistsCmd())
	cmd.AddCommand(newStorageCheckCmd())
	cmd.AddCommand(newStorageUsageCmd())
	cmd.AddCommand(newStorageVersionsCmd())

	return cmd
}

func newStorageExistsCmd() *cobra.Command {
	var storage, versionID string

	cmd := &cobra.Command{
		Use:   "exists <path>",
		Short: "Check whether a file or folder exists",
		Long:  "Report whether a storage path exists. Exits with code 4 when it does not.",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			p, err := storagePathArg("path", args[0])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				res, err := client.ObjectExists(cmd.Context(), &api.ObjectExistsRequest{
					Path:        p,
					StorageName: storage,
					VersionID:   versionID,
				})
				if err != nil {
					return err
				}
				if err := printResult(cmd, res, func(f *outfmt.Formatter) error {
					switch {
					case !res.Exists:
						f.Printf("%s does not exist\n", p)
					case res.IsFolder:
						f.Printf("%s exists (folder)\n", p)
					default:
						f.Printf("%s exists (file)\n", p)
					}
					return nil
				}); err != nil {
					return err
				}
				if !res.Exists {
					return &handledError{err: fmt.Errorf("%s does not exist", p), exitCode: exitNotFound}
				}
				return nil
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Check a specific version")
	return cmd
}

func newStorageCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <storage-name>",
		Short: "Check whether a named storage is configured",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				res, err := client.StorageExists(cmd.Context(), &api.StorageExistsRequest{StorageName: name})
				if err != nil {
					return err
				}
				if err := printResult(cmd, res, func(f *outfmt.Formatter) error {
					if res.Exists {
						f.Printf("Storage %s exists\n", name)
					} else {
						f.Printf("Storage %s does not exist\n", name)
					}
					return nil
				}); err != nil {
					return err
				}
				if !res.Exists {
					return &handledError{err: fmt.Errorf("storage %s does not exist", name), exitCode: exitNotFound}
				}
				return nil
			})
		}),
	}
}

func newStorageUsageCmd() *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:     "usage",
		Aliases: []string{"disc-usage", "du"},
		Short:   "Show storage consumption",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				usage, err := client.GetDiscUsage(cmd.Context(), &api.GetDiscUsageRequest{StorageName: storage})
				if err != nil {
					return err
				}
				return printResult(cmd, usage, func(f *outfmt.Formatter) error {
					f.Printf("Used:  %s\n", outfmt.HumanSize(usage.UsedSize))
					f.Printf("Total: %s\n", outfmt.HumanSize(usage.TotalSize))
					if usage.TotalSize > 0 {
						f.Printf("Free:  %s (%.1f%% used)\n",
							outfmt.HumanSize(usage.TotalSize-usage.UsedSize),
							float64(usage.UsedSize)*100/float64(usage.TotalSize))
					}
					return nil
				})
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	return cmd
}

func newStorageVersionsCmd() *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:   "versions <path>",
		Short: "List the versions of a file",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			p, err := storagePathArg("path", args[0])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				versions, err := client.GetFileVersions(cmd.Context(), &api.GetFileVersionsRequest{Path: p, StorageName: storage})
				if err != nil {
					return err
				}
				if versions == nil {
					return &api.APIError{StatusCode: 404, Message: fmt.Sprintf("file %q not found", p)}
				}
				return printResult(cmd, versions.Value, func(f *outfmt.Formatter) error {
					if len(versions.Value) == 0 {
						f.Empty(fmt.Sprintf("No versions recorded for %s.", p))
						return nil
					}
					f.StartTable([]string{"VERSION", "SIZE", "MODIFIED", "LATEST"})
					for _, v := range versions.Value {
						f.Row(v.VersionID, outfmt.HumanSize(v.Size), formatModified(v.ModifiedDate), strconv.FormatBool(v.IsLatest))
					}
					return f.EndTable()
				})
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	return cmd
}
