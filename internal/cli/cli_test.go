package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redirector/internal/testutil"
)

const testRunID = "0192d1c4-0000-7000-8000-000000000001"

// execute runs a subcommand built by newCmd with args and returns stdout.
func execute(t *testing.T, format string, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format, RunIDs: testutil.NewFixedRunID(testRunID)}
	cmd := newCmd(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// sharedShopDSN returns a SQLite database holding testutil.SharedShop.
func sharedShopDSN(t *testing.T) string {
	t.Helper()
	path := testutil.NewMagentoDB(t, testutil.SharedShop())
	require.FileExists(t, path)
	return path
}
