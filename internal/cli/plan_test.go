package cli

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/redirector/internal/storefront"
)

func TestPlanText(t *testing.T) {
	dsn := sharedShopDSN(t)

	out, err := execute(t, "text", NewPlanCommand, "--driver", "sqlite3", "--dsn", dsn, "-l", "en=us")
	require.NoError(t, err)

	assert.Contains(t, out, "Stores:")
	assert.Contains(t, out, "Languages:")
	assert.Contains(t, out, "Rules:")
	assert.Contains(t, out, "1. it")
	assert.Contains(t, out, "2. en-gb")
	assert.Contains(t, out, "3. en")
	assert.Contains(t, out, "us.conf  http://shop.example/  2 rule(s)")
	assert.NotContains(t, out, "old")
}

func TestPlanJSON(t *testing.T) {
	dsn := sharedShopDSN(t)

	out, err := execute(t, "json", NewPlanCommand, "--driver", "sqlite3", "--dsn", dsn, "-l", "en=us")
	require.NoError(t, err)

	var resp struct {
		Status  string     `json:"status"`
		Data    PlanResult `json:"data"`
		TraceID string     `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, testRunID, resp.TraceID)

	assert.Equal(t, []storefront.Entry{
		{Language: "it", URL: "http://shop.example.it/", Code: "it", IsDefault: true},
		{Language: "en-gb", URL: "http://shop.example/?store=uk", Code: "uk"},
		{Language: "en", URL: "http://shop.example/", Code: "us", IsDefault: true},
	}, resp.Data.Rules)

	var keys []string
	for _, e := range resp.Data.Mapping {
		keys = append(keys, e.Language)
	}
	assert.Equal(t, []string{"en-us", "en", "en-gb", "it-it", "it"}, keys)
	assert.Len(t, resp.Data.Stores, 3)
	assert.Empty(t, resp.Data.Conflicts)
}

func TestPlanListsEveryConflict(t *testing.T) {
	dsn := sharedShopDSN(t)

	out, err := execute(t, "text", NewPlanCommand, "--driver", "sqlite3", "--dsn", dsn)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ 1 ambiguous language(s):")
	assert.Contains(t, out, "en: us, uk")
	assert.Contains(t, out, "Error [E101]")
}

func TestPlanWritesNothing(t *testing.T) {
	dsn := sharedShopDSN(t)
	dir := t.TempDir()

	_, err := execute(t, "text", NewPlanCommand, "--driver", "sqlite3", "--dsn", dsn, "-l", "en=us", "-d", dir)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
