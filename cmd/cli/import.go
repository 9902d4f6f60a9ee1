package main

import (
	"fmt"
	"os"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/importer"
	"github.com/erg0nix/graft/internal/store"
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file> [name]",
		Short: "Import a conversation from an exported transcript",
		Long: "Reads an exported transcript (raw message array or export envelope),\n" +
			"reconciles tool invocations with their results, and saves the result\n" +
			"as a named conversation. Import is all-or-nothing: a transcript whose\n" +
			"tool exchanges cannot be reconciled is rejected and nothing is saved.",
		Args: cobra.RangeArgs(1, 2),
		RunE: runImportCmd,
	}

	cmd.Flags().String("name", "", "name for the imported conversation (default: derived from the file)")
	cmd.Flags().Bool("no-thinking", false, "drop thinking blocks during import")
	cmd.Flags().Bool("no-tool-use", false, "drop tool invocations and results during import")
	cmd.Flags().Bool("overwrite", false, "replace an existing conversation of the same name")

	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	name, _ := cmd.Flags().GetString("name")
	if name == "" && len(args) > 1 {
		name = args[1]
	}
	noThinking, _ := cmd.Flags().GetBool("no-thinking")
	noToolUse, _ := cmd.Flags().GetBool("no-tool-use")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	opts := importer.Options{
		IncludeThinking: !noThinking,
		IncludeToolUse:  !noToolUse,
	}

	transcript, err := importer.Import(data, opts)
	if err != nil {
		return fmt.Errorf("import failed, nothing saved: %w", err)
	}

	if name == "" {
		name = transcript.Name
	}
	if err := store.ValidateName(name); err != nil {
		return err
	}

	model := transcript.Model
	if model == "" {
		model = cfg.DefaultModel
	}

	conv := conversation.New(name, model)
	conv.Turns = transcript.Turns

	svc := newStore(cfg)
	path, err := svc.Save(conv, overwrite)
	if err != nil {
		return err
	}

	lipgloss.Printf("%s %d turns into %s\n", styleSuccess.Render("Imported"), len(conv.Turns), path)
	return nil
}
