package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, time.Second, cfg.Autosave.Delay)
	assert.Equal(t, "https://alltrades.ru/cp/?show=login&act=auth&key=", cfg.Auth.Endpoint)
	assert.Equal(t, "/dashboard", cfg.Auth.RedirectPath)
	assert.Equal(t, filepath.Join(cfg.DataDir, "builder.db"), cfg.Storage.Path)
	assert.Equal(t, filepath.Join(cfg.DataDir, "backups"), cfg.Backup.Dir)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "builder.yaml")
	body := "data_dir: " + dir + "\nstorage:\n  driver: redis\n  host: cache\nautosave:\n  delay: 250ms\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("BUILDER_STORAGE_HOST", "cache.internal")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache.internal", cfg.Storage.Host)
	assert.Equal(t, 250*time.Millisecond, cfg.Autosave.Delay)
	assert.Equal(t, filepath.Join(dir, "builder.db"), cfg.Storage.Path)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("should reject unknown driver", func(t *testing.T) {
		cfg := Config{Storage: StorageConfig{Driver: "oracle"}, Autosave: AutosaveConfig{Delay: time.Second}}
		assert.ErrorContains(t, cfg.Validate(), "unsupported storage driver")
	})

	t.Run("should reject zero autosave delay", func(t *testing.T) {
		cfg := Config{Storage: StorageConfig{Driver: "sqlite"}}
		assert.ErrorContains(t, cfg.Validate(), "autosave.delay")
	})
}
