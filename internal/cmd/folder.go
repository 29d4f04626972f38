package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/cli"
	"github.com/groupdocs/assembly-cloud-go/internal/dryrun"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

// newFolderCmd creates the folder command group
func newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders", "dir"},
		Short:   "Manage folders in cloud storage",
		Args:    cobra.ArbitraryArgs,
		RunE:    groupRunE,
	}

	cmd.AddCommand(newFolderListCmd())
	cmd.AddCommand(newFolderCreateCmd())
	cmd.AddCommand(newFolderDeleteCmd())
	cmd.AddCommand(newFolderTransferCmd("copy", "Copy a folder"))
	cmd.AddCommand(newFolderTransferCmd("move", "Move a folder"))

	return cmd
}

// storagePathArg validates and normalizes a required storage path argument.
func storagePathArg(field, raw string) (string, error) {
	if err := validation.ValidateStoragePath(field, raw); err != nil {
		return "", err
	}
	p := validation.NormalizeStoragePath(raw)
	if p == "" {
		return "", fmt.Errorf("invalid %s: the storage root is not allowed here", field)
	}
	return p, nil
}

func newFolderListCmd() *cobra.Command {
	var storage, modifiedSince string

	cmd := &cobra.Command{
		Use:     "list [path]",
		Aliases: []string{"ls"},
		Short:   "List files and folders",
		Long:    "List the content of a storage folder. Without a path the storage root is listed.",
		Example: strings.TrimSpace(`
  assembly folder list templates
  assembly folder list templates --output json --query '.value[] | select(.isFolder | not) | .name'
  assembly folder list out --modified-since "2h ago"`),
		Args: cobra.MaximumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			dir := "/"
			if len(args) == 1 {
				if err := validation.ValidateStoragePath("path", args[0]); err != nil {
					return err
				}
				if p := validation.NormalizeStoragePath(args[0]); p != "" {
					dir = p
				}
			}
			var since time.Time
			if modifiedSince != "" {
				t, err := cli.ParseSince(modifiedSince, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --modified-since: %w", err)
				}
				since = t
			}

			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				list, err := client.GetFilesList(cmd.Context(), &api.GetFilesListRequest{Path: dir, StorageName: storage})
				if err != nil {
					return err
				}
				if list == nil {
					return &api.APIError{StatusCode: 404, Message: fmt.Sprintf("folder %q not found", dir)}
				}
				if !since.IsZero() {
					list.Value = modifiedAfter(list.Value, since)
				}

				return printResult(cmd, list.Value, func(f *outfmt.Formatter) error {
					if len(list.Value) == 0 {
						f.Empty(fmt.Sprintf("Folder %s is empty.", dir))
						return nil
					}
					f.StartTable([]string{"NAME", "SIZE", "MODIFIED", "FOLDER"})
					for _, entry := range list.Value {
						f.Row(entry.Name, entrySize(entry), formatModified(entry.ModifiedDate), strconv.FormatBool(entry.IsFolder))
					}
					return f.EndTable()
				})
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().StringVar(&modifiedSince, "modified-since", "", "Only entries modified at or after this time (2h, 3d ago, yesterday, monday, 2006-01-02)")
	return cmd
}

// modifiedAfter keeps entries modified at or after since. Entries without a
// modification date are dropped.
func modifiedAfter(entries []api.StorageFile, since time.Time) []api.StorageFile {
	kept := make([]api.StorageFile, 0, len(entries))
	for _, entry := range entries {
		if entry.ModifiedDate != nil && !entry.ModifiedDate.Before(since) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func entrySize(entry api.StorageFile) string {
	if entry.IsFolder {
		return "-"
	}
	return outfmt.HumanSize(entry.Size)
}

func formatModified(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func newFolderCreateCmd() *cobra.Command {
	var storage string

	cmd := &cobra.Command{
		Use:     "create <path>",
		Aliases: []string{"mkdir"},
		Short:   "Create a folder",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			dir, err := storagePathArg("path", args[0])
			if err != nil {
				return err
			}
			if done, err := previewMutation(cmd, dryrun.New("CreateFolder", "PUT", dir).With("storageName", storage)); done {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				if err := client.CreateFolder(cmd.Context(), &api.CreateFolderRequest{Path: dir, StorageName: storage}); err != nil {
					return err
				}
				return printAction(cmd, map[string]any{"created": dir}, "Created folder %s", dir)
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	return cmd
}

func newFolderDeleteCmd() *cobra.Command {
	var (
		storage   string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:     "delete <path>",
		Aliases: []string{"rm", "rmdir"},
		Short:   "Delete a folder",
		Long:    "Delete a storage folder. Non-empty folders require --recursive.",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			dir, err := storagePathArg("path", args[0])
			if err != nil {
				return err
			}
			preview := dryrun.New("DeleteFolder", "DELETE", dir).With("storageName", storage).With("recursive", recursive)
			if recursive {
				preview.Warn("everything under %s is deleted", dir)
			}
			if done, err := previewMutation(cmd, preview); done {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				req := &api.DeleteFolderRequest{Path: dir, StorageName: storage, Recursive: recursive}
				if err := client.DeleteFolder(cmd.Context(), req); err != nil {
					return err
				}
				return printAction(cmd, map[string]any{"deleted": dir, "recursive": recursive}, "Deleted folder %s", dir)
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Delete the folder content too")
	return cmd
}

// newFolderTransferCmd builds "folder copy" and "folder move".
func newFolderTransferCmd(verb, short string) *cobra.Command {
	var srcStorage, destStorage string

	cmd := &cobra.Command{
		Use:   verb + " <src> <dest>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			src, err := storagePathArg("source path", args[0])
			if err != nil {
				return err
			}
			dest, err := storagePathArg("destination path", args[1])
			if err != nil {
				return err
			}
			req := api.CopyFolderRequest{
				SrcPath:         src,
				DestPath:        dest,
				SrcStorageName:  srcStorage,
				DestStorageName: destStorage,
			}
			operation := map[string]string{"copy": "CopyFolder", "move": "MoveFolder"}[verb]
			preview := dryrun.New(operation, "POST", src).
				With("destPath", dest).
				With("srcStorageName", srcStorage).
				With("destStorageName", destStorage)
			if done, err := previewMutation(cmd, preview); done {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				if verb == "move" {
					moveReq := api.MoveFolderRequest(req)
					err = client.MoveFolder(cmd.Context(), &moveReq)
				} else {
					err = client.CopyFolder(cmd.Context(), &req)
				}
				if err != nil {
					return err
				}
				past := map[string]string{"copy": "Copied", "move": "Moved"}[verb]
				return printAction(cmd, map[string]any{"source": src, "destination": dest, "operation": verb}, "%s folder %s -> %s", past, src, dest)
			})
		}),
	}

	cmd.Flags().StringVar(&srcStorage, "src-storage", "", "Source storage name")
	cmd.Flags().StringVar(&destStorage, "dest-storage", "", "Destination storage name")
	return cmd
}
