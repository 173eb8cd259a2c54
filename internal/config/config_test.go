package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Listen)
	assert.Equal(t, "0000", cfg.Passkey.Code)
	assert.Equal(t, "sunday", cfg.Calendar.WeekStart)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	yaml := "calendar:\n  weekstart: monday\n  timezone: Europe/Warsaw\nstorage:\n  driver: redis\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("EVENTCAL_STORAGE_DRIVER", "memory")
	t.Setenv("EVENTCAL_PASSKEY_CODE", "1234")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monday", cfg.Calendar.WeekStart)
	assert.Equal(t, "Europe/Warsaw", cfg.Calendar.Timezone)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "1234", cfg.Passkey.Code)
}
