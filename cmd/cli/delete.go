package main

import (
	"fmt"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <conversation>",
		Short: "Delete a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}

	cmd.Flags().Bool("force", false, "force delete the active conversation")

	return cmd
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	name := args[0]
	activeName := loadActiveConversation(cfg.DataDir)
	force, _ := cmd.Flags().GetBool("force")

	if name == activeName && !force {
		return fmt.Errorf("conversation %s is active; use --force to delete it", name)
	}

	svc := newStore(cfg)
	if err := svc.Delete(name); err != nil {
		return err
	}

	if name == activeName {
		if err := clearActiveConversation(cfg.DataDir); err != nil {
			return err
		}
	}

	lipgloss.Printf("%s conversation %s\n", styleSuccess.Render("Deleted"), name)
	return nil
}
