package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

type formPart struct {
	fileName string
	content  string
}

// parseForm decodes a recorded multipart body keyed by field name.
func parseForm(t *testing.T, call recordedRequest) map[string]formPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(call.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("Content-Type = %q, want multipart", call.Header.Get("Content-Type"))
	}
	reader := multipart.NewReader(bytes.NewReader(call.Body), params["boundary"])
	parts := make(map[string]formPart)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			return parts
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		data, _ := io.ReadAll(part)
		parts[part.FormName()] = formPart{fileName: part.FileName(), content: string(data)}
	}
}

func TestBuild_DownloadsDocument(t *testing.T) {
	handler := newRouteHandler().
		On("POST", apiRoot+"/invoice.docx/build", binaryResponse(200, "%PDF-1.7 document"))
	env := setupTestEnv(t, handler)
	env.writeFile("data/invoice.json", `{"customer":"Ada"}`)

	out, _, err := env.run("build", "invoice.docx", "--folder", "templates", "--data", "data/invoice.json", "--format", "PDF")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(out, "Built templates/invoice.docx -> invoice.pdf") {
		t.Errorf("unexpected output: %q", out)
	}
	if got := env.readFile("invoice.pdf"); got != "%PDF-1.7 document" {
		t.Errorf("document = %q", got)
	}

	call := handler.lastCall(t)
	if call.Query.Get("folder") != "templates" {
		t.Errorf("folder = %q", call.Query.Get("folder"))
	}
	if call.Header.Get("Authorization") != "Bearer test-token" {
		t.Errorf("Authorization = %q", call.Header.Get("Authorization"))
	}

	form := parseForm(t, call)
	var opts map[string]any
	if err := json.Unmarshal([]byte(form["saveOptions"].content), &opts); err != nil {
		t.Fatalf("saveOptions not JSON: %v", err)
	}
	if opts["saveFormat"] != "pdf" {
		t.Errorf("saveFormat = %v, want pdf", opts["saveFormat"])
	}
	if form["data"].content != `{"customer":"Ada"}` {
		t.Errorf("data = %q", form["data"].content)
	}
	if form["data"].fileName != "invoice.json" {
		t.Errorf("data file name = %q", form["data"].fileName)
	}
}

func TestBuild_StdinToStdout(t *testing.T) {
	handler := newRouteHandler().
		On("POST", apiRoot+"/report.docx/build", binaryResponse(200, "DOCBYTES"))
	env := setupTestEnv(t, handler)
	env.stdin = strings.NewReader(`<data/>`)

	out, _, err := env.run("build", "report.docx", "--data", "-", "--format", "docx", "--out", "-")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if out != "DOCBYTES" {
		t.Errorf("stdout = %q, want document bytes only", out)
	}
	if got := parseForm(t, handler.lastCall(t))["data"].content; got != "<data/>" {
		t.Errorf("data = %q", got)
	}
}

func TestBuild_DestKeepsResultInStorage(t *testing.T) {
	handler := newRouteHandler().
		On("POST", apiRoot+"/invoice.docx/build", binaryResponse(200, "stored"))
	env := setupTestEnv(t, handler)
	env.writeFile("data.json", `{}`)

	out, _, err := env.run("build", "invoice.docx", "--data", "data.json", "--format", "pdf", "--dest", "/out/invoice.pdf", "-o", "json")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result["stored"] != "out/invoice.pdf" {
		t.Errorf("stored = %v", result["stored"])
	}
	if got := handler.lastCall(t).Query.Get("destFileName"); got != "out/invoice.pdf" {
		t.Errorf("destFileName = %q", got)
	}
	if exists, _ := fsExists(env, "invoice.pdf"); exists {
		t.Error("document should not be downloaded with --dest")
	}
}

func TestBuild_TemplateNotFound(t *testing.T) {
	handler := newRouteHandler().
		On("POST", apiRoot+"/missing.docx/build", jsonResponse(404, `{"error":{"message":"not found"}}`))
	env := setupTestEnv(t, handler)
	env.writeFile("data.json", `{}`)

	_, errOut, err := env.run("build", "missing.docx", "--data", "data.json", "--format", "pdf")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ExitCode(err); code != exitNotFound {
		t.Errorf("exit code = %d, want %d", code, exitNotFound)
	}
	if !strings.Contains(errOut, `template "missing.docx" not found`) {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestBuild_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"t.docx", "--data", "data.json", "--format", "exe"}, "invalid format"},
		{"parent segment", []string{"../t.docx", "--data", "data.json", "--format", "pdf"}, "invalid template"},
		{"dest and out", []string{"t.docx", "--data", "data.json", "--format", "pdf", "--dest", "a.pdf", "--out", "b.pdf"}, "--dest conflicts with --out"},
		{"missing data file", []string{"t.docx", "--data", "nope.json", "--format", "pdf"}, "failed to open data file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newRouteHandler()
			env := setupTestEnv(t, handler)
			env.writeFile("data.json", `{}`)

			_, errOut, err := env.run(append([]string{"build"}, tt.args...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want %q", errOut, tt.want)
			}
			if calls := handler.apiCalls(); len(calls) != 0 {
				t.Errorf("expected no API calls, got %d", len(calls))
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	tests := map[string]string{
		"invoice.docx":         "invoice.pdf",
		"templates/report.odt": "report.pdf",
		"noext":                "noext.pdf",
	}
	for in, want := range tests {
		if got := outputName(in, "pdf"); got != want {
			t.Errorf("outputName(%q) = %q, want %q", in, got, want)
		}
	}
}

func fsExists(env *testEnv, path string) (bool, error) {
	_, err := env.fs.Stat(path)
	if err != nil {
		return false, err
	}
	return true, nil
}

func TestBuild_DryRun(t *testing.T) {
	handler := newRouteHandler()
	env := setupTestEnv(t, handler)
	env.writeFile("data.json", `{}`)
	t.Setenv("ASSEMBLY_APP_KEY", "")

	out, _, err := env.run("build", "invoice.docx", "--folder", "templates", "--data", "data.json", "--format", "pdf", "--dest", "out/invoice.pdf", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	for _, want := range []string{"[DRY-RUN] AssembleDocument templates/invoice.docx (POST)", "destFileName: out/invoice.pdf", "No changes made"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if len(handler.calls) != 0 {
		t.Errorf("dry run contacted the server %d times", len(handler.calls))
	}
}
