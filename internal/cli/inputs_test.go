package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redirector/internal/assign"
	"github.com/roach88/redirector/internal/store"
	"github.com/roach88/redirector/internal/testutil"
)

func parseInputs(t *testing.T, args ...string) (*cobra.Command, *InputOptions) {
	t.Helper()
	in := &InputOptions{}
	cmd := &cobra.Command{Use: "test"}
	addInputFlags(cmd, in)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, in
}

func writeOptions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redirector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveSettings_Defaults(t *testing.T) {
	cmd, in := parseInputs(t, "--dsn", "user:pw@tcp(db:3306)/magento")

	s, err := resolveSettings(cmd, in, nil)
	require.NoError(t, err)
	assert.Equal(t, store.MySQL, s.db.Driver)
	assert.Equal(t, assign.DefaultSelectorParam, s.engine.SelectorParam)
	assert.Empty(t, s.engine.Overrides)
	assert.False(t, s.engine.SkipAmbiguous)
}

func TestResolveSettings_FlagsOverrideFile(t *testing.T) {
	path := writeOptions(t, `
directory: /from/file
basename: file-
store_param: ___store
languages:
  en: us
  de: de
skip: [staging]
skip_ambiguous: true
database:
  driver: sqlite3
  dsn: /tmp/file.db
`)
	cmd, in := parseInputs(t, "-c", path,
		"-d", "/from/flag",
		"-l", "en=uk",
		"--languages", "fr=fr",
		"-s", "old", "-s", "staging",
		"--skip-ambiguous=false")

	s, err := resolveSettings(cmd, in, nil)
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", s.directory)
	assert.Equal(t, "file-", s.engine.Basename)
	assert.Equal(t, "___store", s.engine.SelectorParam)
	assert.Equal(t, map[string]string{"en": "uk", "de": "de", "fr": "fr"}, s.engine.Overrides)
	assert.Equal(t, []string{"staging", "old"}, s.engine.Skip)
	assert.False(t, s.engine.SkipAmbiguous)
	assert.Equal(t, store.SQLite, s.db.Driver)
	assert.Equal(t, "/tmp/file.db", s.db.DSN)
}

func TestResolveSettings_LocalXML(t *testing.T) {
	root := testutil.WriteLocalXML(t, testutil.LocalXMLConnection{
		Host: "db", Username: "mage", Password: "secret", DBName: "shop", TablePrefix: "mg_",
	})

	cmd, in := parseInputs(t, "--secure")
	s, err := resolveSettings(cmd, in, []string{root})
	require.NoError(t, err)
	assert.Equal(t, store.MySQL, s.db.Driver)
	assert.Equal(t, "mg_", s.db.TablePrefix)
	assert.True(t, s.db.Secure)
	assert.Contains(t, s.db.DSN, "shop")

	cmd, in = parseInputs(t, "--table-prefix", "")
	s, err = resolveSettings(cmd, in, []string{root})
	require.NoError(t, err)
	assert.Empty(t, s.db.TablePrefix)
}

func TestResolveSettings_DSNWinsOverLocalXML(t *testing.T) {
	cmd, in := parseInputs(t, "--driver", "sqlite3", "--dsn", "/tmp/x.db")

	s, err := resolveSettings(cmd, in, []string{"/nonexistent/magento"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", s.db.DSN)
}

func TestResolveSettings_BadLanguagePair(t *testing.T) {
	cmd, in := parseInputs(t, "--dsn", "x", "-l", "en")

	_, err := resolveSettings(cmd, in, nil)
	require.Error(t, err)
	code, exit := classify(err)
	assert.Equal(t, ErrCodeInvalidOptions, code)
	assert.Equal(t, ExitCommandError, exit)
}

func TestResolveSettings_MissingOptionsFile(t *testing.T) {
	cmd, in := parseInputs(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := resolveSettings(cmd, in, nil)
	require.Error(t, err)
	code, _ := classify(err)
	assert.Equal(t, ErrCodeNotFound, code)
}

func TestResolveSettings_RejectsMalformedStoreParam(t *testing.T) {
	for _, param := range []string{"a b", "", "store=x", "1store"} {
		t.Run(param, func(t *testing.T) {
			cmd, in := parseInputs(t, "--dsn", "x", "--store-param", param)

			_, err := resolveSettings(cmd, in, nil)
			require.Error(t, err)
			code, exit := classify(err)
			assert.Equal(t, ErrCodeInvalidOptions, code)
			assert.Equal(t, ExitCommandError, exit)
		})
	}

	cmd, in := parseInputs(t, "--dsn", "x", "--store-param", "___store")
	s, err := resolveSettings(cmd, in, nil)
	require.NoError(t, err)
	assert.Equal(t, "___store", s.engine.SelectorParam)
}
