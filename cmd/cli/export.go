package main

import (
	"fmt"
	"os"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/erg0nix/graft/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [conversation]",
		Short: "Export a conversation to text, markdown, json, or yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}

	cmd.Flags().StringP("format", "f", "text", "output format: text, md, json, yaml")
	cmd.Flags().StringP("output", "o", "", "output file (default: <conversation>.<ext>)")
	cmd.Flags().Bool("thinking", false, "include thinking blocks")
	cmd.Flags().Bool("tools", false, "include tool invocations and results")

	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	withThinking, _ := cmd.Flags().GetBool("thinking")
	withTools, _ := cmd.Flags().GetBool("tools")

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

	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	if output == "" {
		output = name + "." + exporter.Extension()
	}

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	opts := export.Options{
		IncludeThinking: withThinking,
		IncludeToolUse:  withTools,
	}

	if err := exporter.Export(conv, file, opts); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	lipgloss.Printf("%s %s to %s\n", styleSuccess.Render("Exported"), name, output)
	return nil
}
