package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/erg0nix/graft/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved conversations",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	svc := newStore(cfg)
	list, err := svc.List()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		lipgloss.Println(styleDim.Render("No conversations found."))
		return nil
	}

	activeName := loadActiveConversation(cfg.DataDir)

	if !isInteractive() {
		printConversationsTable(list, activeName)
		return nil
	}

	return pickConversation(cfg.DataDir, list, activeName)
}

func printConversationsTable(list []store.Info, activeName string) {
	t := table.New().
		Headers("", "NAME", "MODEL", "TURNS", "MODIFIED").
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	for _, info := range list {
		marker := " "
		name := info.Name
		if name == activeName {
			marker = styleActive.Render("*")
			name = styleActive.Render(name)
		}

		t.Row(marker, name, info.Model,
			fmt.Sprintf("%d", info.Turns),
			formatTime(info.UpdatedAt))
	}

	lipgloss.Println(t.Render())
}

func pickConversation(dataDir string, list []store.Info, activeName string) error {
	var opts []huh.Option[string]
	for _, info := range list {
		label := info.Name
		if info.Name == activeName {
			label = "* " + info.Name
		}

		desc := fmt.Sprintf("model:%s turns:%d %s", info.Model, info.Turns, formatTime(info.UpdatedAt))

		opt := huh.NewOption(label, info.Name)
		opt.Key = label + "  " + styleDim.Render(desc)
		if info.Name == activeName {
			opt = opt.Selected(true)
		}
		opts = append(opts, opt)
	}

	var selected string
	err := huh.NewSelect[string]().
		Title("Pick a conversation").
		Options(opts...).
		Value(&selected).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	if err := saveActiveConversation(dataDir, selected); err != nil {
		return err
	}

	lipgloss.Printf("%s conversation %s\n", styleSuccess.Render("Activated"), selected)
	return nil
}

func formatTime(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	case d < 48*time.Hour:
		return "yesterday"
	default:
		days := int(d.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}
}
