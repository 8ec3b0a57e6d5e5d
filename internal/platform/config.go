package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the config file looked up in the data directory.
const ConfigFile = "cardweaver.yaml"

// Environment variables overriding the config file.
const (
	EnvDir          = "CARDWEAVER_DIR"
	EnvAdapter      = "CARDWEAVER_ADAPTER"
	EnvDSN          = "CARDWEAVER_DSN"
	EnvReadOnly     = "CARDWEAVER_READ_ONLY"
	EnvSpeechCmd    = "CARDWEAVER_SPEECH_CMD"
	EnvClipboardCmd = "CARDWEAVER_CLIPBOARD_CMD"
	EnvAssistantCmd = "CARDWEAVER_ASSISTANT_CMD"
)

// Config is the user-editable configuration of a data directory.
type Config struct {
	Adapter  string `yaml:"adapter,omitempty"`
	DSN      string `yaml:"dsn,omitempty"`
	ReadOnly bool   `yaml:"read_only,omitempty"`

	// External programs backing the capabilities. Empty disables them.
	SpeechCommand    string `yaml:"speech_command,omitempty"`
	ClipboardCommand string `yaml:"clipboard_command,omitempty"`
	AssistantCommand string `yaml:"assistant_command,omitempty"`
}

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// LoadConfig reads ConfigFile from dir, when present, and applies the
// environment overrides on top.
func LoadConfig(dir string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to dir as ConfigFile.
func SaveConfig(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0644)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAdapter); v != "" {
		c.Adapter = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.DSN = v
	}
	if v := os.Getenv(EnvReadOnly); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvReadOnly, err)
		}
		c.ReadOnly = b
	}
	if v := os.Getenv(EnvSpeechCmd); v != "" {
		c.SpeechCommand = v
	}
	if v := os.Getenv(EnvClipboardCmd); v != "" {
		c.ClipboardCommand = v
	}
	if v := os.Getenv(EnvAssistantCmd); v != "" {
		c.AssistantCommand = v
	}
	return nil
}
