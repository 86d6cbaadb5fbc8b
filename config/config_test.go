package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYamlConfMissingFile(t *testing.T) {
	_, err := LoadYamlConf(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadYamlConfMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [not a map"), 0644))
	_, err := LoadYamlConf(path)
	assert.Error(t, err)
}

func TestLoadYamlConfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: nonsense\n"), 0644))

	cfg, err := LoadYamlConf(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:8019", cfg.RPCService.Addr)
	assert.Equal(t, "", cfg.RPCService.Proxy)
}
