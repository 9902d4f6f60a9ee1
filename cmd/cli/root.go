package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erg0nix/graft/internal/config"
	"github.com/erg0nix/graft/internal/store"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "graft [conversation]",
		Short: "Conversation manager for chat-completion APIs",
		Long: "graft keeps named conversations on disk and drives them against a\n" +
			"chat-completion API: interactive chat with tool use, prompt caching,\n" +
			"transcript import, and export.",
		Args: cobra.MaximumNArgs(1),
		RunE: runChatCmd,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func loadConfig(path string) (config.Config, error) {
	configPath := path

	if configPath == "" {
		configPath = filepath.Join(config.Default().DataDir, "config.toml")
	}

	return config.LoadOrCreate(configPath)
}

func newStore(cfg config.Config) *store.Service {
	return &store.Service{BaseDir: cfg.DataDir}
}

func loadActiveConversation(dataDir string) string {
	path := filepath.Join(dataDir, "active_conversation")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func saveActiveConversation(dataDir string, name string) error {
	if name == "" {
		return nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dataDir, "active_conversation")

	return os.WriteFile(path, []byte(name), 0o644)
}

func clearActiveConversation(dataDir string) error {
	path := filepath.Join(dataDir, "active_conversation")

	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
