// Package config loads the TOML configuration from the graft data
// directory, writing the defaults on first run. The rest of the program
// receives these as plain values; nothing else reads the file.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type ToolsConfig struct {
	MaxFileSizeBytes    int64 `toml:"max_file_size_bytes"`
	ShellTimeoutSeconds int   `toml:"shell_timeout_seconds"`
}

type Config struct {
	DefaultModel   string      `toml:"default_model"`
	CacheTTL       string      `toml:"cache_ttl"`
	MaxTokens      int         `toml:"max_tokens"`
	ThinkingBudget int         `toml:"thinking_budget"`
	TokenRatio     int         `toml:"token_ratio"`
	DataDir        string      `toml:"data_dir"`
	Endpoint       string      `toml:"endpoint"`
	Tools          ToolsConfig `toml:"tools"`
}

func Default() Config {
	return Config{
		DefaultModel:   "claude-opus-4-5-20251101",
		CacheTTL:       "5m",
		MaxTokens:      8192,
		ThinkingBudget: 0,
		TokenRatio:     2,
		DataDir:        defaultDataDir(),
		Endpoint:       "https://api.anthropic.com",
		Tools: ToolsConfig{
			MaxFileSizeBytes:    10 * 1024 * 1024,
			ShellTimeoutSeconds: 30,
		},
	}
}

func LoadOrCreate(path string) (Config, error) {
	config := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return config, err
			}

			configData, err := toml.Marshal(config)
			if err != nil {
				return config, err
			}

			if err := os.WriteFile(path, configData, 0o644); err != nil {
				return config, err
			}

			return config, nil
		}

		return config, err
	}

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := toml.Unmarshal(configData, &config); err != nil {
		return config, err
	}

	config.DataDir = expandPath(config.DataDir)
	config.Endpoint = strings.TrimSpace(config.Endpoint)

	if config.Endpoint == "" {
		return config, errors.New("endpoint is required")
	}

	if config.MaxTokens <= 0 {
		config.MaxTokens = Default().MaxTokens
	}

	if config.TokenRatio <= 0 {
		config.TokenRatio = Default().TokenRatio
	}

	return config, nil
}

func defaultDataDir() string {
	homeDir, _ := os.UserHomeDir()

	if homeDir == "" {
		return ".graft"
	}

	return filepath.Join(homeDir, ".graft")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}

	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()

		if homeDir != "" {
			trimmed := strings.TrimPrefix(path, "~")
			trimmed = strings.TrimPrefix(trimmed, string(os.PathSeparator))

			return filepath.Join(homeDir, trimmed)
		}
	}

	return path
}
