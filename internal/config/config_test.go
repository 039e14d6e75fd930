package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("ENCRYPTOR", "")
	t.Setenv("LEDGER_BACKEND", "")
	t.Setenv("ENCRYPT_WORKERS", "")

	require.NoError(t, LoadEnvConfig(filepath.Join(t.TempDir(), "missing.env")))

	assert.Equal(t, "8080", DefaultEnvConfig.APP_PORT)
	assert.Equal(t, "native", DefaultEnvConfig.ENCRYPTOR)
	assert.Equal(t, 4, DefaultEnvConfig.ENCRYPT_WORKERS)
	assert.Equal(t, "none", DefaultEnvConfig.LEDGER_BACKEND)
	assert.Equal(t, 20*time.Minute, DefaultEnvConfig.DB_CONN_MAX_LIFETIME)
}

func TestLoadEnvConfig_FromFile(t *testing.T) {
	for _, key := range []string{"APP_PORT", "ENCRYPTOR", "EXTRA_ROW_COUNT", "DB_CONN_MAX_LIFETIME", "LEDGER_BACKEND"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	content := "APP_PORT=9090\nENCRYPTOR=MSOffice\nEXTRA_ROW_COUNT=25\nDB_CONN_MAX_LIFETIME=30\nLEDGER_BACKEND=Postgres\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, LoadEnvConfig(path))

	assert.Equal(t, "9090", DefaultEnvConfig.APP_PORT)
	assert.Equal(t, "msoffice", DefaultEnvConfig.ENCRYPTOR)
	assert.Equal(t, 25, DefaultEnvConfig.EXTRA_ROW_COUNT)
	assert.Equal(t, 30*time.Second, DefaultEnvConfig.DB_CONN_MAX_LIFETIME)
	assert.Equal(t, "postgres", DefaultEnvConfig.LEDGER_BACKEND)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("XLFC_INT", "not-a-number")
	t.Setenv("XLFC_DUR", "1m30s")

	assert.Equal(t, 7, getEnvInt("XLFC_INT", 7))
	assert.Equal(t, 90*time.Second, getEnvDuration("XLFC_DUR", time.Second))
	assert.Equal(t, "fallback", getEnvString("XLFC_UNSET_KEY", "fallback"))
}
