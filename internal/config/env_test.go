package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, key := range []string{EnvPort, EnvDB, EnvLogLevel, EnvTaxTables} {
		t.Setenv(key, "")
	}

	s := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, Settings{Port: "8080", DBPath: "splittax.db", LogLevel: "info"}, s)
}

func TestLoadSettings_EnvFile(t *testing.T) {
	for _, key := range []string{EnvPort, EnvDB, EnvLogLevel, EnvTaxTables} {
		t.Setenv(key, "")
		// godotenv only fills variables that are unset
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv(EnvPort, "9090")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPLITTAX_PORT=7070\nSPLITTAX_DB=/tmp/x.db\nSPLITTAX_LOG_LEVEL=debug\n"), 0644))

	s := LoadSettings(path)
	assert.Equal(t, "9090", s.Port, "existing environment wins")
	assert.Equal(t, "/tmp/x.db", s.DBPath)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Empty(t, s.TaxTables)
}
