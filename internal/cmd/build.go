package cmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/groupdocs/assembly-cloud-go/internal/api"
	"github.com/groupdocs/assembly-cloud-go/internal/dryrun"
	"github.com/groupdocs/assembly-cloud-go/internal/iocontext"
	"github.com/groupdocs/assembly-cloud-go/internal/outfmt"
	"github.com/groupdocs/assembly-cloud-go/internal/validation"
)

type buildOptions struct {
	dataPath string
	format   string
	folder   string
	dest     string
	out      string
	fileName string
}

// newBuildCmd creates the build command
func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <template>",
		Short: "Assemble a document from a stored template",
		Long: strings.TrimSpace(`
Build a document from a template already uploaded to cloud storage and a
local JSON or XML data file.

With --dest the service stores the result in cloud storage. Otherwise the
document is downloaded to --out (default: template name with the new
extension; "-" writes to stdout).`),
		Example: strings.TrimSpace(`
  # Build a PDF from templates/invoice.docx
  assembly build invoice.docx --folder templates --data invoice.json --format pdf

  # Keep the result in storage instead of downloading it
  assembly build invoice.docx --folder templates --data invoice.json --format docx --dest out/invoice.docx

  # Pipe data in and the document out
  cat data.json | assembly build report.docx --data - --format pdf --out - > report.pdf`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], opts)
		}),
	}

	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "Data file (JSON or XML); - reads stdin")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: "+strings.Join(validation.SaveFormats, ", "))
	cmd.Flags().StringVar(&opts.folder, "folder", "", "Storage folder that holds the template")
	cmd.Flags().StringVar(&opts.dest, "dest", "", "Store the result at this storage path instead of downloading")
	cmd.Flags().StringVar(&opts.out, "out", "", "Local output file; - writes to stdout")
	cmd.Flags().StringVar(&opts.fileName, "file-name", "", "File name reported by the service for the result")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func runBuild(cmd *cobra.Command, template string, opts buildOptions) error {
	streams := iocontext.GetIO(cmd.Context())

	if err := validation.ValidateStoragePath("template", template); err != nil {
		return err
	}
	if err := validation.ValidateSaveFormat(opts.format); err != nil {
		return err
	}
	if opts.folder != "" {
		if err := validation.ValidateStoragePath("folder", opts.folder); err != nil {
			return err
		}
	}
	if opts.dest != "" {
		if err := validation.ValidateStoragePath("dest", opts.dest); err != nil {
			return err
		}
		if opts.out != "" {
			return fmt.Errorf("--dest conflicts with --out")
		}
	}

	format := strings.ToLower(strings.TrimSpace(opts.format))
	data, err := openLocalFile(streams, opts.dataPath)
	if err != nil {
		return fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() { _ = data.Close() }()

	dataName := path.Base(opts.dataPath)
	if opts.dataPath == "-" {
		dataName = "data.json"
	}

	req := &api.PostAssembleDocumentRequest{
		Name: validation.NormalizeStoragePath(template),
		SaveOptions: &api.SaveOptionsData{
			SaveFormat: format,
			FileName:   opts.fileName,
		},
		Data:         data,
		DataFileName: dataName,
		Folder:       validation.NormalizeStoragePath(opts.folder),
		DestFileName: validation.NormalizeStoragePath(opts.dest),
	}

	preview := dryrun.New("AssembleDocument", "POST", storageLocation(req.Folder, req.Name)).
		With("saveFormat", format).
		With("data", opts.dataPath).
		With("destFileName", req.DestFileName).
		With("fileName", opts.fileName)
	if done, err := previewMutation(cmd, preview); done {
		return err
	}

	return withClient(cmd.Context(), func(client *api.AssemblyAPI) error {
		body, err := client.AssembleDocument(cmd.Context(), req)
		if err != nil {
			return err
		}
		if body == nil {
			return &api.APIError{StatusCode: 404, Message: fmt.Sprintf("template %q not found", storageLocation(req.Folder, req.Name))}
		}
		defer func() { _ = body.Close() }()

		if opts.dest != "" {
			n, err := drain(body)
			if err != nil {
				return err
			}
			result := map[string]any{
				"template": storageLocation(req.Folder, req.Name),
				"format":   format,
				"stored":   req.DestFileName,
				"bytes":    n,
			}
			return printAction(cmd, result, "Built %s -> %s (storage)", storageLocation(req.Folder, req.Name), req.DestFileName)
		}

		out := opts.out
		if out == "" {
			out = outputName(req.Name, format)
		}
		n, err := writeLocalFile(streams, out, body)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		if out == "-" {
			return nil
		}
		result := map[string]any{
			"template": storageLocation(req.Folder, req.Name),
			"format":   format,
			"output":   out,
			"bytes":    n,
		}
		return printResult(cmd, result, func(f *outfmt.Formatter) error {
			f.Printf("Built %s -> %s (%s)\n", storageLocation(req.Folder, req.Name), out, outfmt.HumanSize(n))
			return nil
		})
	})
}

// outputName swaps the template extension for the save format.
func outputName(template, format string) string {
	base := path.Base(template)
	return strings.TrimSuffix(base, path.Ext(base)) + "." + format
}

func storageLocation(folder, name string) string {
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}
