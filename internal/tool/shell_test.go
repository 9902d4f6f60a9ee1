package tool

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestShellExec(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	shell := &ShellExec{Root: root}

	tests := []struct {
		name     string
		command  string
		contains []string
	}{
		{
			name:     "stdout captured",
			command:  "echo hello",
			contains: []string{"stdout:", "hello"},
		},
		{
			name:     "stderr captured",
			command:  "echo oops >&2",
			contains: []string{"stderr:", "oops"},
		},
		{
			name:     "exit code reported",
			command:  "echo partial; exit 3",
			contains: []string{"partial", "(exit code: 3)"},
		},
		{
			name:     "no output",
			command:  "true",
			contains: []string{"(no output)"},
		},
		{
			name:     "missing command argument",
			command:  "",
			contains: []string{"Error: command is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}
			if tt.command != "" {
				args["command"] = tt.command
			}

			got := shell.Execute(ctx, args)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got %q", want, got)
				}
			}
		})
	}
}

func TestShellExecRunsInRoot(t *testing.T) {
	root := t.TempDir()
	shell := &ShellExec{Root: root}

	got := shell.Execute(context.Background(), map[string]any{"command": "pwd"})
	if !strings.Contains(got, root) {
		t.Errorf("expected command to run in %q, got %q", root, got)
	}
}

func TestShellExecTimeout(t *testing.T) {
	shell := &ShellExec{Root: t.TempDir(), Timeout: 50 * time.Millisecond}

	got := shell.Execute(context.Background(), map[string]any{"command": "sleep 5"})
	if !strings.Contains(got, "timed out") {
		t.Errorf("expected timeout message, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxOutputBytes+100)
	got := truncate(long)

	if !strings.HasSuffix(got, "(output truncated)") {
		t.Errorf("expected truncation marker")
	}
	if len(got) >= len(long) {
		t.Errorf("output not shortened")
	}
}
