package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "slotstore.ini")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 7000

[storage]
dir = /var/lib/slotstore/
index_file = directory.db
sync_interval = 3

[log]
level = DEBUG
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DEFAULT_HOST, cfg.Host)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "/var/lib/slotstore/", cfg.DirectoryPath)
	assert.Equal(t, DEFAULT_CONTENT_FILE, cfg.ContentFileName)
	assert.Equal(t, "directory.db", cfg.IndexFileName)
	assert.EqualValues(t, 3, cfg.SyncInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"port out of range", "[server]\nport = 70000\n"},
		{"same file names", "[storage]\ncontent_file = a.db\nindex_file = a.db\n"},
		{"unknown log level", "[log]\nlevel = loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
