package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	lipgloss "github.com/charmbracelet/lipgloss/v2"

	"github.com/erg0nix/graft/internal/cache"
	"github.com/erg0nix/graft/internal/compress"
	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
	"github.com/erg0nix/graft/internal/export"
	"github.com/erg0nix/graft/internal/provider"
	"github.com/erg0nix/graft/internal/store"
	"github.com/erg0nix/graft/internal/tool"
)

// dispatch handles one slash command. The returned bool reports whether the
// chat loop should exit.
func (session *chatSession) dispatch(line string) (bool, error) {
	fields := strings.Fields(line)
	command := fields[0]
	args := fields[1:]

	switch command {
	case "/quit", "/exit", "/q":
		session.autosave()
		return true, nil
	case "/help":
		printHelp()
		return false, nil
	case "/save":
		return false, session.cmdSave(args)
	case "/load":
		return false, session.cmdLoad(args)
	case "/list":
		return false, session.cmdList()
	case "/new":
		return false, session.cmdNew(args)
	case "/rename":
		return false, session.cmdRename(args)
	case "/delete":
		return false, session.cmdDelete()
	case "/read":
		session.printTranscript()
		return false, nil
	case "/export":
		return false, session.cmdExport(args)
	case "/cache":
		return false, session.cmdCache(args)
	case "/model":
		return false, session.cmdModel(args)
	case "/max_tokens":
		return false, session.cmdMaxTokens(args)
	case "/thinking":
		return false, session.cmdThinking(args)
	case "/system":
		return false, session.cmdSystem(line)
	case "/tokens":
		lipgloss.Println(kvLine("Tokens (est)", fmt.Sprintf("~%d", session.conv.TokenEstimate(session.cfg.TokenRatio))))
		return false, nil
	case "/stats":
		session.printStats()
		return false, nil
	case "/compress":
		return false, session.cmdCompress(args)
	case "/tools":
		return false, session.cmdTools()
	case "/shell":
		return false, session.cmdShell()
	default:
		return false, fmt.Errorf("unknown command %s; try /help", command)
	}
}

func printHelp() {
	help := [][2]string{
		{"/save [name] [force]", "save the conversation"},
		{"/load <name>", "load a saved conversation"},
		{"/list", "list saved conversations"},
		{"/new [name]", "start a fresh conversation"},
		{"/rename <name>", "rename the conversation"},
		{"/delete", "delete the conversation from disk"},
		{"/read", "print the transcript"},
		{"/export <format> [file]", "export as text, md, json, or yaml"},
		{"/cache <off|5m|1h>", "set the prompt cache lifetime"},
		{"/model [name]", "show or change the model"},
		{"/max_tokens [n]", "show or change the response budget"},
		{"/thinking [budget]", "show or change the thinking budget"},
		{"/system [text]", "show or change the system prompt"},
		{"/tokens", "estimate conversation tokens"},
		{"/stats", "show session usage"},
		{"/compress [target]", "condense the conversation"},
		{"/tools", "toggle file tools"},
		{"/shell", "toggle the shell tool"},
		{"/quit", "save and exit"},
	}

	for _, entry := range help {
		lipgloss.Printf("  %-26s %s\n", styleValue.Render(entry[0]), styleDim.Render(entry[1]))
	}
}

func (session *chatSession) cmdSave(args []string) error {
	name := ""
	force := false
	for _, arg := range args {
		if arg == "force" {
			force = true
		} else {
			name = arg
		}
	}

	if name == "" && session.conv.Name != "" {
		force = true
	}

	return session.saveAs(name, force)
}

func (session *chatSession) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /load <name>")
	}

	session.autosave()

	conv, err := session.svc.Load(args[0])
	if err != nil {
		return err
	}

	session.conv = conv
	_ = saveActiveConversation(session.cfg.DataDir, conv.Name)
	lipgloss.Printf("%s %s (%d turns, ~%d tokens)\n", styleSuccess.Render("Loaded"),
		conv.Name, len(conv.Turns), conv.TokenEstimate(session.cfg.TokenRatio))
	return nil
}

func (session *chatSession) cmdList() error {
	list, err := session.svc.List()
	if err != nil {
		return err
	}

	if len(list) == 0 {
		lipgloss.Println(styleDim.Render("No conversations found."))
		return nil
	}

	for _, info := range list {
		marker := "  "
		if info.Name == session.conv.Name {
			marker = styleActive.Render("* ")
		}
		lipgloss.Printf("%s%-24s %s  %d turns  %s\n", marker, info.Name,
			styleDim.Render(info.Model), info.Turns, styleDim.Render(formatTime(info.UpdatedAt)))
	}
	return nil
}

func (session *chatSession) cmdNew(args []string) error {
	session.autosave()

	name := ""
	if len(args) > 0 {
		name = args[0]
		if err := store.ValidateName(name); err != nil {
			return err
		}
	}

	session.conv = conversation.New(name, session.cfg.DefaultModel)
	lipgloss.Println(styleSuccess.Render("Started fresh conversation"))
	return nil
}

func (session *chatSession) cmdRename(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: /rename <name>")
	}

	newName := args[0]
	if err := store.ValidateName(newName); err != nil {
		return err
	}

	oldName := session.conv.Name
	session.conv.Name = newName

	if _, err := session.svc.Save(session.conv, false); err != nil {
		session.conv.Name = oldName
		return err
	}

	if oldName != "" && session.svc.Exists(oldName) {
		if err := session.svc.Delete(oldName); err != nil {
			return err
		}
	}

	_ = saveActiveConversation(session.cfg.DataDir, newName)
	lipgloss.Printf("%s to %s\n", styleSuccess.Render("Renamed"), newName)
	return nil
}

func (session *chatSession) cmdDelete() error {
	if session.conv.Name == "" {
		return fmt.Errorf("conversation is unsaved; nothing to delete")
	}

	if err := session.svc.Delete(session.conv.Name); err != nil {
		return err
	}

	_ = clearActiveConversation(session.cfg.DataDir)
	lipgloss.Printf("%s %s\n", styleSuccess.Render("Deleted"), session.conv.Name)
	session.conv = conversation.New("", session.cfg.DefaultModel)
	return nil
}

func (session *chatSession) cmdExport(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: /export <format> [file]")
	}

	exporter, err := export.NewExporter(args[0])
	if err != nil {
		return err
	}

	name := session.conv.Name
	if name == "" {
		name = "conversation"
	}

	output := name + "." + exporter.Extension()
	if len(args) > 1 {
		output = args[1]
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	opts := export.Options{IncludeThinking: true, IncludeToolUse: true}
	if err := exporter.Export(session.conv, file, opts); err != nil {
		return err
	}

	lipgloss.Printf("%s to %s\n", styleSuccess.Render("Exported"), output)
	return nil
}

func (session *chatSession) cmdCache(args []string) error {
	if len(args) == 0 {
		lipgloss.Println(kvLine("Cache TTL", string(session.ttl)))
		return nil
	}

	ttl, err := cache.ParseTTL(args[0])
	if err != nil {
		return err
	}

	session.ttl = ttl
	lipgloss.Printf("%s cache ttl %s\n", styleSuccess.Render("Set"), string(ttl))
	return nil
}

func (session *chatSession) cmdModel(args []string) error {
	if len(args) == 0 {
		lipgloss.Println(kvLine("Model", session.conv.Model))
		return nil
	}

	session.conv.Model = args[0]
	lipgloss.Printf("%s model %s\n", styleSuccess.Render("Set"), args[0])
	return nil
}

func (session *chatSession) cmdMaxTokens(args []string) error {
	if len(args) == 0 {
		lipgloss.Println(kvLine("Max tokens", fmt.Sprintf("%d", session.maxTokens)))
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("max_tokens must be a positive integer")
	}

	session.maxTokens = n
	lipgloss.Printf("%s max_tokens %d\n", styleSuccess.Render("Set"), n)
	return nil
}

func (session *chatSession) cmdThinking(args []string) error {
	if len(args) == 0 {
		if session.thinkingBudget >= 1024 {
			lipgloss.Println(kvLine("Thinking budget", fmt.Sprintf("%d", session.thinkingBudget)))
		} else {
			lipgloss.Println(kvLine("Thinking", "off"))
		}
		return nil
	}

	if args[0] == "off" {
		session.thinkingBudget = 0
		lipgloss.Println(styleSuccess.Render("Thinking off"))
		return nil
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1024 {
		return fmt.Errorf("thinking budget must be an integer >= 1024, or 'off'")
	}

	session.thinkingBudget = n
	lipgloss.Printf("%s thinking budget %d\n", styleSuccess.Render("Set"), n)
	return nil
}

func (session *chatSession) cmdSystem(line string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "/system"))
	if rest == "" {
		if session.conv.SystemPrompt == "" {
			lipgloss.Println(styleDim.Render("No system prompt set."))
		} else {
			lipgloss.Println(kvLine("System", session.conv.SystemPrompt))
		}
		return nil
	}

	if rest == "off" {
		session.conv.SystemPrompt = ""
		lipgloss.Println(styleSuccess.Render("System prompt cleared"))
		return nil
	}

	session.conv.SystemPrompt = rest
	lipgloss.Println(styleSuccess.Render("System prompt set"))
	return nil
}

// cmdCompress asks the model to condense the transcript, then replaces the
// turns with the parsed result. The original is saved first under
// <name>-precompression so a bad condensation is recoverable.
func (session *chatSession) cmdCompress(args []string) error {
	if len(session.conv.Turns) == 0 {
		return fmt.Errorf("nothing to compress")
	}

	before := session.conv.TokenEstimate(session.cfg.TokenRatio)

	target := before / 2
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("target must be a positive integer")
		}
		target = n
	}
	if target < 500 {
		target = 500
	}

	if session.conv.Name != "" {
		backup := *session.conv
		backup.Name = session.conv.Name + "-precompression"
		if _, err := session.svc.Save(&backup, true); err != nil {
			return fmt.Errorf("backup before compression: %w", err)
		}
		lipgloss.Printf("%s backup %s\n", styleDim.Render("Saved"), backup.Name)
	}

	turns := append(append([]core.Turn{}, session.conv.Turns...),
		core.UserTurn(compress.Instructions(target)))

	lipgloss.Println(styleDim.Render("Compressing..."))

	response, err := session.client.Complete(context.Background(), provider.Request{
		Model:     session.conv.Model,
		System:    session.conv.SystemPrompt,
		MaxTokens: session.maxTokens,
		CacheTTL:  cache.TTLOff,
		Turns:     turns,
	})
	if err != nil {
		return err
	}

	session.requests++
	session.usage.InputTokens += response.Usage.InputTokens
	session.usage.OutputTokens += response.Usage.OutputTokens

	parsed, err := compress.Parse(response.Text())
	if err != nil {
		return fmt.Errorf("compression response unusable, conversation unchanged: %w", err)
	}

	session.conv.ReplaceTurns(parsed)
	session.autosave()

	after := session.conv.TokenEstimate(session.cfg.TokenRatio)
	lipgloss.Printf("%s ~%d -> ~%d tokens (%d turns)\n",
		styleSuccess.Render("Compressed"), before, after, len(parsed))
	return nil
}

func (session *chatSession) cmdTools() error {
	session.fileToolsOn = !session.fileToolsOn
	session.rebuildRegistry()

	if session.fileToolsOn {
		lipgloss.Println(styleSuccess.Render("File tools enabled"))
	} else {
		lipgloss.Println(styleDim.Render("File tools disabled"))
	}
	return nil
}

func (session *chatSession) cmdShell() error {
	session.shellToolOn = !session.shellToolOn
	session.rebuildRegistry()

	if session.shellToolOn {
		lipgloss.Println(styleWarning.Render("Shell tool enabled; commands run unsandboxed"))
	} else {
		lipgloss.Println(styleDim.Render("Shell tool disabled"))
	}
	return nil
}

func (session *chatSession) rebuildRegistry() {
	if !session.fileToolsOn && !session.shellToolOn {
		session.registry = nil
		return
	}

	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	registry := tool.NewRegistry()

	if session.fileToolsOn {
		for _, t := range tool.NewFileTools(workingDir, session.cfg.Tools.MaxFileSizeBytes) {
			registry.Add(t)
		}
	}

	if session.shellToolOn {
		registry.Add(&tool.ShellExec{
			Root:    workingDir,
			Timeout: time.Duration(session.cfg.Tools.ShellTimeoutSeconds) * time.Second,
		})
	}

	session.registry = registry
}
