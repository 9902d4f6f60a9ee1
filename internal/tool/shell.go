package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const maxOutputBytes = 128 * 1024

// ShellExec runs a shell command inside the project root. It is registered
// only when the user opts in; the timeout keeps a stuck command from
// wedging the chat loop.
type ShellExec struct {
	Root    string
	Timeout time.Duration
}

func (tool *ShellExec) Name() string { return "shell_exec" }

func (tool *ShellExec) Description() string {
	return fmt.Sprintf(
		"Execute a shell command in the project directory. Returns stdout/stderr. "+
			"Commands are killed after %d seconds; for long-running operations detach "+
			"with `screen -dmS name command` or redirect output to a file.",
		int(tool.timeout().Seconds()))
}

func (tool *ShellExec) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "Shell command to execute",
			},
		},
		"required": []string{"command"},
	}
}

func (tool *ShellExec) Execute(ctx context.Context, args map[string]any) string {
	command, ok := getStringArg("command", args)
	if !ok || command == "" {
		return "Error: command is required"
	}

	runCtx, cancel := context.WithTimeout(ctx, tool.timeout())
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = tool.Root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf(
			"Error: command timed out and was killed after %d seconds. Child processes it "+
				"spawned may still be running (check with `pgrep`).",
			int(tool.timeout().Seconds()))
	}

	var parts []string
	if stdout.Len() > 0 {
		parts = append(parts, "stdout:\n"+truncate(stdout.String()))
	}
	if stderr.Len() > 0 {
		parts = append(parts, "stderr:\n"+truncate(stderr.String()))
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			parts = append(parts, fmt.Sprintf("(exit code: %d)", exitErr.ExitCode()))
		} else {
			return "Error: " + err.Error()
		}
	}

	if len(parts) == 0 {
		return "(no output)"
	}

	return strings.Join(parts, "\n")
}

func (tool *ShellExec) timeout() time.Duration {
	if tool.Timeout <= 0 {
		return 30 * time.Second
	}
	return tool.Timeout
}

func truncate(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	return s[:maxOutputBytes] + "\n... (output truncated)"
}
