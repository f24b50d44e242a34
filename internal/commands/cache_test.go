package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var debugEnv = []string{"LEDGERLENS_LOG_LEVEL=debug"}

func TestLedgerCache_ReusedAcrossRunsUntilImport(t *testing.T) {
	dir := newProject(t)
	importBankExports(t, dir)

	out, err := runLedgerlensEnv(t, debugEnv, "subscriptions", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ledger rebuilt")
	assert.Contains(t, out, "SPOTIFY USA")

	for _, f := range []string{"ledger.key", "ledger.csv", "accounts.csv"} {
		_, err := os.Stat(filepath.Join(dir, "cache", f))
		assert.NoError(t, err, "cache/%s should exist", f)
	}

	for _, args := range [][]string{
		{"subscriptions", "--repo", dir},
		{"summary", "--repo", dir, "--days", "0"},
		{"balances", "--repo", dir},
		{"ledger", "export", "--repo", dir, "--out", "-"},
	} {
		out, err := runLedgerlensEnv(t, debugEnv, args...)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Ledger loaded from cache", args[0])
		assert.NotContains(t, out, "Ledger rebuilt", args[0])
	}

	out, err = runLedgerlensEnv(t, debugEnv, "summary", "--repo", dir, "--days", "0")
	require.NoError(t, err, out)
	assert.Contains(t, out, "214.25", "cached ledger gives the same totals")

	stage(t, dir, "chase_credit.csv", "credit-again.csv")
	out, err = runLedgerlens(t, "import", "--repo", dir)
	require.NoError(t, err, out)

	out, err = runLedgerlensEnv(t, debugEnv, "subscriptions", "--repo", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Ledger rebuilt", "a new snapshot invalidates the cache")
}

func TestLedgerCache_Disabled(t *testing.T) {
	dir := newProject(t)
	editConfig(t, dir, "cache_dir: cache", `cache_dir: ""`)
	importBankExports(t, dir)

	for i := 0; i < 2; i++ {
		out, err := runLedgerlensEnv(t, debugEnv, "subscriptions", "--repo", dir)
		require.NoError(t, err, out)
		assert.Contains(t, out, "Ledger rebuilt")
	}
	_, err := os.Stat(filepath.Join(dir, "cache"))
	assert.True(t, os.IsNotExist(err))
}
