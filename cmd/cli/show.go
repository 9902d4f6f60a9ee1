package main

import (
	"fmt"
	"time"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [conversation]",
		Short: "Show conversation details",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		name = loadActiveConversation(cfg.DataDir)
		if name == "" {
			return fmt.Errorf("no active conversation; specify a name or pick one with `graft list`")
		}
	}

	svc := newStore(cfg)
	conv, err := svc.Load(name)
	if err != nil {
		return err
	}

	activeName := loadActiveConversation(cfg.DataDir)
	statusText := styleDim.Render("inactive")
	if name == activeName {
		statusText = styleSuccess.Render("active")
	}

	model := conv.Model
	if model == "" {
		model = cfg.DefaultModel
	}

	lipgloss.Println(kvLine("Conversation", conv.Name))
	lipgloss.Println(kvLine("Status", statusText))
	lipgloss.Println(kvLine("Model", model))
	lipgloss.Println(kvLine("Turns", fmt.Sprintf("%d", len(conv.Turns))))
	lipgloss.Println(kvLine("Tokens (est)", fmt.Sprintf("~%d", conv.TokenEstimate(cfg.TokenRatio))))
	if conv.SystemPrompt != "" {
		lipgloss.Println(kvLine("System", conv.SystemPrompt))
	}
	if !conv.CreatedAt.IsZero() {
		lipgloss.Println(kvLine("Created", conv.CreatedAt.Format(time.RFC3339)))
	}
	lipgloss.Println(kvLine("Modified", conv.UpdatedAt.Format(time.RFC3339)))

	return nil
}
