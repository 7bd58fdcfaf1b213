package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, SinkJSONL, cfg.Sink)
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Empty(t, cfg.Addresses)
	assert.Equal(t, "WaitForLocalExecution", cfg.RequestType)
	assert.Error(t, cfg.RequirePool())
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "lending.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
package-id: "0x1"
pool-id: "0xaa"
network: Mainnet
address: "0xbeef, 0xcafe"
interval: 10s
`), 0o644))

	t.Setenv("LENDING_SINK", "WAL")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("pool-id", "", "")
	require.NoError(t, flags.Parse([]string{"--pool-id", "0xbb"}))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "0x1", cfg.PackageID)
	assert.Equal(t, "0xbb", cfg.PoolID)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, []string{"0xbeef", "0xcafe"}, cfg.Addresses)
	assert.Equal(t, 10*time.Second, cfg.Interval)
	assert.Equal(t, SinkWAL, cfg.Sink)
	assert.NoError(t, cfg.RequirePool())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}
