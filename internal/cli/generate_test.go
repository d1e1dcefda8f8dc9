package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redirector/internal/testutil"
)

func TestGenerateWritesSnippets(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := filepath.Join(t.TempDir(), "nginx")

	out, err := execute(t, "text", NewGenerateCommand,
		"--driver", "sqlite3", "--dsn", dsn, "-d", dir, "-l", "en=us")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote 2 file(s) to "+dir)
	assert.Contains(t, out, "us.conf")
	assert.Contains(t, out, "it.conf")

	us, err := os.ReadFile(filepath.Join(dir, "us.conf"))
	require.NoError(t, err)
	assert.Equal(t, `# baseurl = http://shop.example/
# store = us
if ($first_language ~* '^it') {
    rewrite /.* http://shop.example.it/ break;
}
if ($first_language ~* '^en-gb') {
    rewrite /.* http://shop.example/?store=uk break;
}
`, string(us))

	it, err := os.ReadFile(filepath.Join(dir, "it.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(it), "# store = it")
	assert.Contains(t, string(it), "'^en-gb'")
	assert.Contains(t, string(it), "'^en'")
	assert.NotContains(t, string(it), "'^it'")
}

func TestGenerateJSON(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := t.TempDir()

	out, err := execute(t, "json", NewGenerateCommand,
		"--driver", "sqlite3", "--dsn", dsn, "-d", dir, "-l", "en=us", "-b", "lang-")
	require.NoError(t, err)

	var resp struct {
		Status  string         `json:"status"`
		Data    GenerateResult `json:"data"`
		TraceID string         `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testRunID, resp.TraceID)
	assert.Equal(t, dir, resp.Data.Directory)
	assert.Equal(t, []FileSummary{
		{Name: "lang-us.conf", URL: "http://shop.example/", Store: "us", Rules: 2},
		{Name: "lang-it.conf", URL: "http://shop.example.it/", Store: "it", Rules: 2},
	}, resp.Data.Files)

	assert.FileExists(t, filepath.Join(dir, "lang-us.conf"))
	assert.FileExists(t, filepath.Join(dir, "lang-it.conf"))
}

func TestGenerateAmbiguousWritesNothing(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "text", NewGenerateCommand, "--driver", "sqlite3", "--dsn", dsn, "-d", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeAmbiguous)
	assert.Contains(t, out, `ambiguous language "en"`)
	assert.Contains(t, out, "us, uk")

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestGenerateAmbiguousJSONDetails(t *testing.T) {
	dsn := sharedShopDSN(t)

	out, err := execute(t, "json", NewGenerateCommand, "--driver", "sqlite3", "--dsn", dsn, "-d", t.TempDir())
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Details []struct {
				Language string   `json:"language"`
				Codes    []string `json:"codes"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeAmbiguous, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "en", resp.Error.Details[0].Language)
	assert.Equal(t, []string{"us", "uk"}, resp.Error.Details[0].Codes)
}

func TestGenerateSkipAmbiguous(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := t.TempDir()

	_, err := execute(t, "text", NewGenerateCommand,
		"--driver", "sqlite3", "--dsn", dsn, "-d", dir, "--skip-ambiguous")
	require.NoError(t, err)

	us, err := os.ReadFile(filepath.Join(dir, "us.conf"))
	require.NoError(t, err)
	assert.NotContains(t, string(us), "'^en'")
	assert.Contains(t, string(us), "'^en-gb'")
}

func TestGenerateSkipStore(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := t.TempDir()

	_, err := execute(t, "text", NewGenerateCommand,
		"--driver", "sqlite3", "--dsn", dsn, "-d", dir, "-s", "uk")
	require.NoError(t, err)

	us, err := os.ReadFile(filepath.Join(dir, "us.conf"))
	require.NoError(t, err)
	assert.NotContains(t, string(us), "store=uk")
}

func TestGenerateInvalidOverride(t *testing.T) {
	dsn := sharedShopDSN(t)

	out, err := execute(t, "text", NewGenerateCommand,
		"--driver", "sqlite3", "--dsn", dsn, "-d", t.TempDir(), "-l", "en=it")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInvalidOverride)
	assert.Contains(t, out, "invalid override en=it")
}

func TestGenerateRequiresDirectory(t *testing.T) {
	dsn := sharedShopDSN(t)

	_, err := execute(t, "text", NewGenerateCommand, "--driver", "sqlite3", "--dsn", dsn, "-l", "en=us")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInvalidOptions)
}

func TestGenerateRequiresSource(t *testing.T) {
	out, err := execute(t, "text", NewGenerateCommand, "-d", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "MAGENTOPATH or --dsn is required")
}

func TestGenerateMissingLocalXML(t *testing.T) {
	out, err := execute(t, "text", NewGenerateCommand, "-d", t.TempDir(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "local.xml")
}

func TestGenerateConfigMissing(t *testing.T) {
	dsn := testutil.NewMagentoDB(t, testutil.MagentoFixture{
		Groups: []testutil.Group{{ID: 1, WebsiteID: 1, DefaultStoreID: 1}},
		Stores: []testutil.Store{{ID: 1, Code: "us", WebsiteID: 1, GroupID: 1, Active: true}},
		Configs: []testutil.ConfigRow{
			{Scope: "default", Path: "general/locale/code", Value: testutil.Value("en_US")},
		},
	})

	out, err := execute(t, "text", NewGenerateCommand, "--driver", "sqlite3", "--dsn", dsn, "-d", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeConfigMissing)
	assert.Contains(t, out, "web/unsecure/base_url")
}

func TestGenerateFromOptionsFile(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := t.TempDir()
	optsFile := filepath.Join(t.TempDir(), "redirector.yaml")
	require.NoError(t, os.WriteFile(optsFile, []byte(`
directory: `+dir+`
basename: site-
languages:
  en: us
database:
  driver: sqlite3
  dsn: `+dsn+`
`), 0o644))

	out, err := execute(t, "text", NewGenerateCommand, "-c", optsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "site-us.conf")
	assert.FileExists(t, filepath.Join(dir, "site-it.conf"))
}

func TestGenerateInvalidOptionsFile(t *testing.T) {
	optsFile := filepath.Join(t.TempDir(), "redirector.yaml")
	require.NoError(t, os.WriteFile(optsFile, []byte("directry: /tmp\n"), 0o644))

	_, err := execute(t, "text", NewGenerateCommand, "-c", optsFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInvalidOptions)
}

func TestGenerateVerboseDiagnostics(t *testing.T) {
	dsn := sharedShopDSN(t)
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}

	cmd := NewGenerateCommand(&RootOptions{Format: "json", Verbose: true, RunIDs: testutil.NewFixedRunID(testRunID)})
	cmd.SetOut(out)
	cmd.SetErr(diag)
	cmd.SetArgs([]string{"--driver", "sqlite3", "--dsn", dsn, "-d", t.TempDir(), "-l", "en=us"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, diag.String(), "Loaded 3 store view(s) via sqlite3")
	assert.Contains(t, diag.String(), "Rendered us.conf for http://shop.example/ (2 rule(s))")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
