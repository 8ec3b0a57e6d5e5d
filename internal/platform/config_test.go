package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cardweaver/internal/platform"
)

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		platform.EnvAdapter, platform.EnvDSN, platform.EnvReadOnly,
		platform.EnvSpeechCmd, platform.EnvClipboardCmd, platform.EnvAssistantCmd,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File Is Empty", func(t *testing.T) {
		clearEnv(t)
		cfg, err := platform.LoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, platform.Config{}, cfg)
	})

	t.Run("Reads YAML", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, platform.ConfigFile), []byte(
			"adapter: sql\ndsn: sqlite://study.db\nspeech_command: espeak --stdin\n"), 0644))

		cfg, err := platform.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "sql", cfg.Adapter)
		assert.Equal(t, "sqlite://study.db", cfg.DSN)
		assert.Equal(t, "espeak --stdin", cfg.SpeechCommand)
		assert.False(t, cfg.ReadOnly)
	})

	t.Run("Env Overrides File", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, platform.SaveConfig(dir, platform.Config{Adapter: "fs", ClipboardCommand: "xclip"}))

		t.Setenv(platform.EnvAdapter, "memory")
		t.Setenv(platform.EnvReadOnly, "true")
		t.Setenv(platform.EnvAssistantCmd, "my-ai")

		cfg, err := platform.LoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Adapter)
		assert.True(t, cfg.ReadOnly)
		assert.Equal(t, "xclip", cfg.ClipboardCommand)
		assert.Equal(t, "my-ai", cfg.AssistantCommand)
	})

	t.Run("Invalid Values", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, platform.ConfigFile), []byte("adapter: [unclosed"), 0644))
		_, err := platform.LoadConfig(dir)
		assert.Error(t, err)

		t.Setenv(platform.EnvReadOnly, "maybe")
		_, err = platform.LoadConfig(t.TempDir())
		assert.Error(t, err)
	})
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CARDWEAVER_SPEECH_CMD=say\n"), 0644))

	require.NoError(t, platform.LoadEnv(filepath.Join(dir, "missing.env"), envFile))
	t.Cleanup(func() { os.Unsetenv(platform.EnvSpeechCmd) })
	assert.Equal(t, "say", os.Getenv(platform.EnvSpeechCmd))

	cfg, err := platform.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "say", cfg.SpeechCommand)
}

func TestNewCapabilities(t *testing.T) {
	caps := platform.NewCapabilities(platform.Config{}, nil)
	assert.False(t, caps.HasAssistant)
	assert.NotNil(t, caps.Speaker)
	assert.NotNil(t, caps.Clipboard)

	caps = platform.NewCapabilities(platform.Config{
		SpeechCommand:    "cat",
		AssistantCommand: "cat",
	}, nil)
	assert.True(t, caps.HasAssistant)
}
