package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/erg0nix/graft/internal/cache"
	"github.com/erg0nix/graft/internal/config"
	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
	"github.com/erg0nix/graft/internal/provider"
	"github.com/erg0nix/graft/internal/store"
	"github.com/erg0nix/graft/internal/tool"
)

// chatSession is the state behind one interactive chat: the conversation
// being driven, the provider client, session-scoped setting overrides, and
// usage totals. Settings changed via slash commands live for the session
// only; the config file is never written back.
type chatSession struct {
	cfg      config.Config
	svc      *store.Service
	client   *provider.Client
	conv     *conversation.Conversation
	registry *tool.Registry

	ttl            cache.TTL
	maxTokens      int
	thinkingBudget int
	fileToolsOn    bool
	shellToolOn    bool

	usage    core.Usage
	requests int
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	ttl, err := cache.ParseTTL(cfg.CacheTTL)
	if err != nil {
		return err
	}

	session := &chatSession{
		cfg:            cfg,
		svc:            newStore(cfg),
		client:         provider.NewClient(cfg.Endpoint, apiKey),
		ttl:            ttl,
		maxTokens:      cfg.MaxTokens,
		thinkingBudget: cfg.ThinkingBudget,
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	if name != "" && session.svc.Exists(name) {
		conv, err := session.svc.Load(name)
		if err != nil {
			return err
		}
		session.conv = conv
		lipgloss.Printf("%s %s (%d turns)\n", styleSuccess.Render("Loaded"), name, len(conv.Turns))
	} else {
		session.conv = conversation.New(name, cfg.DefaultModel)
		if name != "" {
			lipgloss.Printf("New conversation %s\n", styleValue.Render(name))
		}
	}

	if session.conv.Name != "" {
		_ = saveActiveConversation(cfg.DataDir, session.conv.Name)
	}

	return session.loop()
}

func (session *chatSession) loop() error {
	lipgloss.Println(styleDim.Render("Type /help for commands, /quit to exit."))

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(styleHuman.Render("> "))

		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := session.dispatch(line)
			if err != nil {
				lipgloss.Println(styledError(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		if err := session.send(context.Background(), line); err != nil {
			lipgloss.Println(styledError(err.Error()))
		}
	}
}

// send appends the user turn and runs the completion loop, executing tools
// until the model stops asking for them. On any request failure every turn
// appended by this exchange is rolled back, so the conversation never holds
// half an exchange.
func (session *chatSession) send(ctx context.Context, text string) error {
	checkpoint := len(session.conv.Turns)
	session.conv.Append(core.UserTurn(text))

	for {
		request := provider.Request{
			Model:          session.conv.Model,
			System:         session.conv.SystemPrompt,
			MaxTokens:      session.maxTokens,
			ThinkingBudget: session.thinkingBudget,
			CacheTTL:       session.ttl,
			Turns:          cache.Annotate(session.conv.Turns, session.ttl),
		}

		if session.registry != nil {
			request.Tools = session.registry.Definitions()
		}

		response, err := session.client.Complete(ctx, request)
		if err != nil {
			session.conv.ReplaceTurns(session.conv.Turns[:checkpoint])
			return err
		}

		session.usage.InputTokens += response.Usage.InputTokens
		session.usage.OutputTokens += response.Usage.OutputTokens
		session.usage.CacheCreationInputTokens += response.Usage.CacheCreationInputTokens
		session.usage.CacheReadInputTokens += response.Usage.CacheReadInputTokens
		session.requests++

		session.conv.Append(core.AssistantTurn(response.Blocks...))
		session.printResponse(response)

		if response.StopReason != "tool_use" || session.registry == nil {
			return nil
		}

		uses := response.ToolUses()
		if len(uses) == 0 {
			return nil
		}

		results := make([]core.Block, 0, len(uses))
		for _, use := range uses {
			output := session.registry.Execute(ctx, use.Name, use.Input)
			isError := strings.HasPrefix(output, "Error:")
			results = append(results, core.ToolResultBlock(use.ID, output, isError))
		}

		session.conv.Append(core.Turn{Role: core.RoleUser, Blocks: results})
	}
}

func (session *chatSession) printResponse(response *provider.Response) {
	for _, block := range response.Blocks {
		switch block.Type {
		case core.BlockThinking:
			lipgloss.Println(styleThinking.Render(block.Thinking))
			fmt.Println()
		case core.BlockText:
			lipgloss.Printf("%s %s\n\n", styleAssistant.Render("assistant:"), block.Text)
		case core.BlockToolUse:
			args := string(block.Input)
			if len(args) > 200 {
				args = args[:200] + "..."
			}
			lipgloss.Printf("%s%s\n", styleToolName.Render("tool: "+block.Name), styleToolArgs.Render("("+args+")"))
		}
	}
}

func (session *chatSession) printTranscript() {
	for _, turn := range session.conv.Turns {
		label := styleHuman.Render("human:")
		if turn.Role == core.RoleAssistant {
			label = styleAssistant.Render("assistant:")
		}

		for _, block := range turn.Blocks {
			switch block.Type {
			case core.BlockText:
				lipgloss.Printf("%s %s\n\n", label, block.Text)
			case core.BlockThinking:
				lipgloss.Println(styleThinking.Render(block.Thinking))
				fmt.Println()
			case core.BlockToolUse:
				lipgloss.Printf("%s\n", styleToolName.Render("tool: "+block.Name))
			case core.BlockToolResult:
				result := block.ResultText()
				if len(result) > 200 {
					result = result[:200] + "..."
				}
				lipgloss.Println(styleToolArgs.Render("tool result: " + result))
				fmt.Println()
			}
		}
	}
}

func (session *chatSession) printStats() {
	lipgloss.Println(kvLine("Requests", fmt.Sprintf("%d", session.requests)))
	lipgloss.Println(kvLine("Input tokens", fmt.Sprintf("%d", session.usage.InputTokens)))
	lipgloss.Println(kvLine("Output tokens", fmt.Sprintf("%d", session.usage.OutputTokens)))
	lipgloss.Println(kvLine("Cache writes", fmt.Sprintf("%d", session.usage.CacheCreationInputTokens)))
	lipgloss.Println(kvLine("Cache reads", fmt.Sprintf("%d", session.usage.CacheReadInputTokens)))
	lipgloss.Println(kvLine("Turns", fmt.Sprintf("%d", len(session.conv.Turns))))
	lipgloss.Println(kvLine("Tokens (est)", fmt.Sprintf("~%d", session.conv.TokenEstimate(session.cfg.TokenRatio))))
	lipgloss.Println(kvLine("Cache TTL", string(session.ttl)))
	lipgloss.Println(kvLine("Cache markers", fmt.Sprintf("%d", cache.Count(cache.Annotate(session.conv.Turns, session.ttl)))))
}

func (session *chatSession) saveAs(name string, overwrite bool) error {
	if name != "" {
		session.conv.Name = name
	}
	if session.conv.Name == "" {
		return fmt.Errorf("conversation has no name; use /save <name>")
	}

	path, err := session.svc.Save(session.conv, overwrite)
	if err != nil {
		var conflict *store.NameConflictError
		if errors.As(err, &conflict) {
			return fmt.Errorf("%s exists; use /save %s force to overwrite", conflict.Name, conflict.Name)
		}
		return err
	}

	_ = saveActiveConversation(session.cfg.DataDir, session.conv.Name)
	lipgloss.Printf("%s to %s\n", styleSuccess.Render("Saved"), path)
	return nil
}

func (session *chatSession) autosave() {
	if session.conv.Name == "" {
		return
	}
	if _, err := session.svc.Save(session.conv, true); err != nil {
		lipgloss.Println(styledError("autosave failed: " + err.Error()))
	}
}
