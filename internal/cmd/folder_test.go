package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const folderListing = `{"value":[
	{"name":"invoice.docx","isFolder":false,"modifiedDate":"2024-03-01T10:20:00Z","size":20480,"path":"/templates/invoice.docx"},
	{"name":"archive","isFolder":true,"size":0,"path":"/templates/archive"}
]}`

func TestFolderList_Text(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder/templates", jsonResponse(200, folderListing))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "list", "/templates")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "invoice.docx")
	assert.Contains(t, lines[1], "20.0 KiB")
	assert.Contains(t, lines[1], "2024-03-01 10:20")
	assert.Contains(t, lines[2], "archive")
	assert.Contains(t, lines[2], "true")
}

func TestFolderList_RootByDefault(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder//", jsonResponse(200, `{"value":[]}`))
	env := setupTestEnv(t, handler)

	_, errOut, err := env.run("folder", "list", "--storage", "First Storage")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Folder / is empty.")
	assert.Equal(t, "First Storage", handler.lastCall(t).Query.Get("storageName"))
}

func TestFolderList_JSONQuery(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder/templates", jsonResponse(200, folderListing))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "list", "templates", "--query", `[.value[] | select(.isFolder | not) | .name]`, "--compact-json")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Equal(t, []string{"invoice.docx"}, names)
}

func TestFolderList_JSONLines(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder/templates", jsonResponse(200, folderListing))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "ls", "templates", "-o", "jsonl")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestFolderList_NotFound(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder/missing", jsonResponse(404, `{"error":{"message":"not found"}}`))
	env := setupTestEnv(t, handler)

	_, errOut, err := env.run("folder", "list", "missing")
	require.Error(t, err)
	assert.Equal(t, exitNotFound, ExitCode(err))
	assert.Contains(t, errOut, `folder "missing" not found`)
}

func TestFolderCreateAndDelete(t *testing.T) {
	handler := newRouteHandler().
		On("PUT", apiRoot+"/storage/folder/reports/2024", jsonResponse(200, `{}`)).
		On("DELETE", apiRoot+"/storage/folder/reports/2024", jsonResponse(200, `{}`))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "create", "reports/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Created folder reports/2024")

	out, _, err = env.run("folder", "delete", "reports/2024", "--recursive")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted folder reports/2024")
	assert.Equal(t, "true", handler.lastCall(t).Query.Get("recursive"))

	_, _, err = env.run("folder", "rm", "reports/2024")
	require.NoError(t, err)
	assert.Equal(t, "false", handler.lastCall(t).Query.Get("recursive"))
}

func TestFolderCreate_RejectsRoot(t *testing.T) {
	handler := newRouteHandler()
	env := setupTestEnv(t, handler)

	_, errOut, err := env.run("folder", "create", "/")
	require.Error(t, err)
	assert.Contains(t, errOut, "storage root")
	assert.Empty(t, handler.apiCalls())
}

func TestFolderCopyMove(t *testing.T) {
	for _, verb := range []string{"copy", "move"} {
		t.Run(verb, func(t *testing.T) {
			handler := newRouteHandler().
				On("POST", apiRoot+"/storage/folder/"+verb+"/templates", jsonResponse(200, `{}`))
			env := setupTestEnv(t, handler)

			out, _, err := env.run("folder", verb, "templates", "backup/templates", "--src-storage", "a", "--dest-storage", "b", "-o", "json")
			require.NoError(t, err)

			var result map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &result))
			assert.Equal(t, verb, result["operation"])

			q := handler.lastCall(t).Query
			assert.Equal(t, "backup/templates", q.Get("destPath"))
			assert.Equal(t, "a", q.Get("srcStorageName"))
			assert.Equal(t, "b", q.Get("destStorageName"))
		})
	}
}

func TestFolder_UnknownSubcommand(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())

	_, errOut, err := env.run("folder", "lst")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
	assert.Contains(t, errOut, `Did you mean "list"?`)
}

func TestFolder_DryRun(t *testing.T) {
	handler := newRouteHandler()
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "delete", "reports", "-r", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[DRY-RUN] DeleteFolder reports (DELETE)")
	assert.Contains(t, out, "recursive: true")
	assert.Contains(t, out, "everything under reports is deleted")

	out, _, err = env.run("folder", "move", "a", "b", "--dry-run", "-o", "json")
	require.NoError(t, err)
	var preview map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, "MoveFolder", preview["operation"])
	assert.Equal(t, map[string]any{"destPath": "b"}, preview["params"])

	assert.Empty(t, handler.calls)
}

func TestFolderList_ModifiedSince(t *testing.T) {
	handler := newRouteHandler().
		On("GET", apiRoot+"/storage/folder/templates", jsonResponse(200, folderListing))
	env := setupTestEnv(t, handler)

	out, _, err := env.run("folder", "list", "templates", "--modified-since", "2024-02-01", "-o", "json")
	require.NoError(t, err)
	var listing struct {
		Value []map[string]any `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.Value, 1)
	assert.Equal(t, "invoice.docx", listing.Value[0]["name"])

	_, errOut, err := env.run("folder", "list", "templates", "--modified-since", "2024-03-02T00:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Folder templates is empty.")

	_, errOut, err = env.run("folder", "list", "templates", "--modified-since", "soon")
	require.Error(t, err)
	assert.Contains(t, errOut, "invalid --modified-since")
}
