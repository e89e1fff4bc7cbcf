package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/sesh.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/sesh.json", loader.configPath)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("defaults when file doesn't exist", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load()
		require.NoError(t, err)

		assert.Equal(t, SchemaVersion, cfg.Version)
		assert.Equal(t, filepath.Join(home, ".sesh"), cfg.DataDir)
		assert.Equal(t, filepath.Join(home, ".sesh", "sesh.log"), cfg.LogFile())
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 5000, cfg.Ledger.BusyTimeoutMS)
	})

	t.Run("load config from file", func(t *testing.T) {
		dataDir := t.TempDir()
		configPath := filepath.Join(t.TempDir(), "sesh.json")

		testConfig := `{
			"version": "1.2.0",
			"data_dir": "` + dataDir + `",
			"logging": {
				"level": "debug",
				"console": true,
				"max_size": 5
			},
			"ledger": {
				"busy_timeout_ms": 250
			}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0600))

		cfg, err := NewLoader(configPath).Load()
		require.NoError(t, err)

		assert.Equal(t, "1.2.0", cfg.Version)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.Console)
		assert.Equal(t, 5, cfg.Logging.MaxSize)
		// Keys absent from the file keep their defaults.
		assert.Equal(t, 30, cfg.Logging.MaxAge)
		assert.True(t, cfg.Logging.Compress)
		assert.Equal(t, 250, cfg.Ledger.BusyTimeoutMS)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		fileDir := t.TempDir()
		envDir := t.TempDir()
		configPath := filepath.Join(t.TempDir(), "sesh.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"data_dir": "`+fileDir+`"}`), 0600))

		t.Setenv("SESH_DATA_DIR", envDir)
		t.Setenv("SESH_LOGGING_LEVEL", "warn")
		t.Setenv("SESH_LEDGER_BUSY_TIMEOUT_MS", "100")

		cfg, err := NewLoader(configPath).Load()
		require.NoError(t, err)

		assert.Equal(t, envDir, cfg.DataDir)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, 100, cfg.Ledger.BusyTimeoutMS)
	})

	t.Run("tilde is expanded", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		configPath := filepath.Join(t.TempDir(), "sesh.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"data_dir": "~/work/sesh"}`), 0600))

		cfg, err := NewLoader(configPath).Load()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "work", "sesh"), cfg.DataDir)
	})

	t.Run("malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "sesh.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"logging": `), 0600))

		_, err := NewLoader(configPath).Load()
		assert.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "sesh.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"version": "2.0.0"}`), 0600))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("invalid log level", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "sesh.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"logging": {"level": "chatty"}}`), 0600))

		_, err := NewLoader(configPath).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoaderSave(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "nested", "sesh.json")
	loader := NewLoader(configPath)

	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Logging.Level = "debug"
	cfg.Ledger.BusyTimeoutMS = 1234

	require.NoError(t, loader.Save(cfg))

	entries, err := os.ReadDir(filepath.Dir(configPath))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")
	assert.Equal(t, "sesh.json", entries[0].Name())

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, "debug", loaded.Logging.Level)
	assert.Equal(t, 1234, loaded.Ledger.BusyTimeoutMS)
	assert.Equal(t, SchemaVersion, loaded.Version)
}

func TestLoaderGetConfigPath(t *testing.T) {
	t.Run("custom path", func(t *testing.T) {
		loader := NewLoader("/custom/sesh.json")
		assert.Equal(t, "/custom/sesh.json", loader.GetConfigPath())
	})

	t.Run("default path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		loader := NewLoader("")
		assert.Equal(t, filepath.Join(home, ".sesh", "sesh.json"), loader.GetConfigPath())
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/x", filepath.Join(home, "x")},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~user/x", "~user/x"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
