package cmd

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/dryrun"
	"github.com/groupdocs/assembly-cloud-go/internal/iocontext"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

// newFileCmd creates the file command group
func newFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "file",
		Aliases: []string{"files"},
		Short:   "Transfer and manage files in cloud storage",
		Args:    cobra.ArbitraryArgs,
		RunE:    groupRunE,
	}

	cmd.AddCommand(newFileUploadCmd())
	cmd.AddCommand(newFileDownloadCmd())
	cmd.AddCommand(newFileDeleteCmd())
	cmd.AddCommand(newFileTransferCmd("copy", "Copy a file"))
	cmd.AddCommand(newFileTransferCmd("move", "Move a file"))

	return cmd
}

// bulkSummary prints per-item results and returns an error when any failed.
func bulkSummary(cmd *cobra.Command, results []BulkResult, verb string) error {
	success, failure := countResults(results)
	f := formatter(cmd)
	if f.Structured() {
		if err := f.Output(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Success {
				f.Printf("%s %s\n", verb, r.Key)
			} else {
				f.Printf("FAILED %s: %s\n", r.Key, r.Error)
			}
		}
		if len(results) > 1 {
			f.Printf("%d succeeded, %d failed\n", success, failure)
		}
	}
	if failure > 0 {
		return fmt.Errorf("%d of %d failed: %w", failure, len(results), firstFailure(results))
	}
	return nil
}

func newFileUploadCmd() *cobra.Command {
	var (
		to       string
		storage  string
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "upload <local-file>...",
		Short: "Upload local files",
		Long: strings.TrimSpace(`
Upload one or more local files into a storage folder. Files keep their base
name. Transfers run in parallel (see --concurrency).`),
		Example: strings.TrimSpace(`
  assembly file upload invoice.docx --to templates
  assembly file upload templates/*.docx --to templates --concurrency 8`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			streams := iocontext.GetIO(cmd.Context())

			dir := ""
			if to != "" {
				if err := validation.ValidateStoragePath("destination", to); err != nil {
					return err
				}
				dir = validation.NormalizeStoragePath(to)
			}

			targets := make(map[string]string, len(args))
			sources := make(map[string]string, len(args))
			for _, local := range args {
				if local == "-" {
					return fmt.Errorf("upload reads named files; stdin is not supported")
				}
				remote := path.Join(dir, filepath.Base(local))
				if err := validation.ValidateStoragePath("destination", remote); err != nil {
					return err
				}
				if prev, ok := sources[remote]; ok && prev != local {
					return fmt.Errorf("%s conflicts with %s: both upload to %s", local, prev, remote)
				}
				sources[remote] = local
				targets[local] = remote
			}

			if dryrun.IsEnabled(cmd.Context()) {
				previews := make([]*dryrun.Preview, 0, len(args))
				for _, local := range args {
					previews = append(previews, dryrun.New("UploadFile", "PUT", targets[local]).
						With("source", local).
						With("storageName", storage))
				}
				_, err := previewMutation(cmd, previews...)
				return err
			}

			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				results := runBulkOperation(cmd.Context(), args, int64(flags.Concurrency), progress, streams.ErrOut,
					func(ctx context.Context, local string) (*api.FilesUploadResult, error) {
						file, err := openLocalFile(streams, local)
						if err != nil {
							return nil, err
						}
						defer func() { _ = file.Close() }()

						res, err := client.UploadFile(ctx, &api.UploadFileRequest{
							File:        file,
							Path:        targets[local],
							StorageName: storage,
						})
						if err != nil {
							return nil, err
						}
						if len(res.Errors) > 0 {
							return res, fmt.Errorf("upload of %s rejected: %s", targets[local], res.Errors[0].Message)
						}
						return res, nil
					})
				return bulkSummary(cmd, results, "Uploaded")
			})
		}),
	}

	cmd.Flags().StringVar(&to, "to", "", "Storage folder to upload into (default: root)")
	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().BoolVar(&progress, "progress", false, "Report progress on stderr")
	return cmd
}

func newFileDownloadCmd() *cobra.Command {
	var (
		out       string
		storage   string
		versionID string
	)

	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Download a file",
		Long:  `Download a storage file to --out (default: its base name; "-" writes to stdout).`,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			streams := iocontext.GetIO(cmd.Context())
			remote, err := storagePathArg("path", args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = path.Base(remote)
			}

			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				body, err := client.DownloadFile(cmd.Context(), &api.DownloadFileRequest{
					Path:        remote,
					StorageName: storage,
					VersionID:   versionID,
				})
				if err != nil {
					return err
				}
				if body == nil {
					return &api.APIError{StatusCode: 404, Message: fmt.Sprintf("file %q not found", remote)}
				}
				defer func() { _ = body.Close() }()

				n, err := writeLocalFile(streams, out, body)
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", out, err)
				}
				if out == "-" {
					return nil
				}
				result := map[string]any{"path": remote, "output": out, "bytes": n}
				return printResult(cmd, result, func(f *outfmt.Formatter) error {
					f.Printf("Downloaded %s -> %s (%s)\n", remote, out, outfmt.HumanSize(n))
					return nil
				})
			})
		}),
	}

	cmd.Flags().StringVar(&out, "out", "", "Local output file; - writes to stdout")
	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Download a specific version")
	return cmd
}

func newFileDeleteCmd() *cobra.Command {
	var (
		storage   string
		versionID string
	)

	cmd := &cobra.Command{
		Use:     "delete <path>...",
		Aliases: []string{"rm"},
		Short:   "Delete files",
		Args:    cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			streams := iocontext.GetIO(cmd.Context())
			if versionID != "" && len(args) > 1 {
				return fmt.Errorf("--version-id applies to a single file")
			}
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				p, err := storagePathArg("path", arg)
				if err != nil {
					return err
				}
				paths = append(paths, p)
			}

			if dryrun.IsEnabled(cmd.Context()) {
				previews := make([]*dryrun.Preview, 0, len(paths))
				for _, p := range paths {
					previews = append(previews, dryrun.New("DeleteFile", "DELETE", p).
						With("storageName", storage).
						With("versionId", versionID))
				}
				_, err := previewMutation(cmd, previews...)
				return err
			}

			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				results := runBulkOperation(cmd.Context(), paths, int64(flags.Concurrency), false, streams.ErrOut,
					func(ctx context.Context, p string) (any, error) {
						return nil, client.DeleteFile(ctx, &api.DeleteFileRequest{
							Path:        p,
							StorageName: storage,
							VersionID:   versionID,
						})
					})
				return bulkSummary(cmd, results, "Deleted")
			})
		}),
	}

	cmd.Flags().StringVar(&storage, "storage", "", "Storage name (default storage if empty)")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Delete a specific version")
	return cmd
}

// newFileTransferCmd builds "file copy" and "file move".
func newFileTransferCmd(verb, short string) *cobra.Command {
	var srcStorage, destStorage, versionID string

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
			req := api.CopyFileRequest{
				SrcPath:         src,
				DestPath:        dest,
				SrcStorageName:  srcStorage,
				DestStorageName: destStorage,
				VersionID:       versionID,
			}
			operation := map[string]string{"copy": "CopyFile", "move": "MoveFile"}[verb]
			preview := dryrun.New(operation, "POST", src).
				With("destPath", dest).
				With("srcStorageName", srcStorage).
				With("destStorageName", destStorage).
				With("versionId", versionID)
			if done, err := previewMutation(cmd, preview); done {
				return err
			}
			return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
				if verb == "move" {
					moveReq := api.MoveFileRequest(req)
					err = client.MoveFile(cmd.Context(), &moveReq)
				} else {
					err = client.CopyFile(cmd.Context(), &req)
				}
				if err != nil {
					return err
				}
				past := map[string]string{"copy": "Copied", "move": "Moved"}[verb]
				return printAction(cmd, map[string]any{"source": src, "destination": dest, "operation": verb}, "%s %s -> %s", past, src, dest)
			})
		}),
	}

	cmd.Flags().StringVar(&srcStorage, "src-storage", "", "Source storage name")
	cmd.Flags().StringVar(&destStorage, "dest-storage", "", "Destination storage name")
	cmd.Flags().StringVar(&versionID, "version-id", "", "Copy a specific version")
	return cmd
}
