package tool

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSafePath(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative file", path: "a.txt"},
		{name: "nested", path: "sub/dir/a.txt"},
		{name: "dot", path: "."},
		{name: "empty", path: "", wantErr: true},
		{name: "parent escape", path: "../outside.txt", wantErr: true},
		{name: "deep escape", path: "sub/../../outside.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, err := safePath(root, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected %q rejected, resolved to %q", tt.path, full)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(full, root) {
				t.Errorf("resolved path %q escapes root %q", full, root)
			}
		})
	}
}

func TestReadWriteListRoundTrip(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	write := &WriteFile{Root: root}
	out := write.Execute(ctx, map[string]any{"path": "notes/a.txt", "content": "hello"})
	if !strings.Contains(out, "Successfully wrote 5 bytes") {
		t.Fatalf("write failed: %s", out)
	}

	read := &ReadFile{Root: root}
	if got := read.Execute(ctx, map[string]any{"path": "notes/a.txt"}); got != "hello" {
		t.Errorf("expected file contents back, got %q", got)
	}

	list := &ListDir{Root: root}
	listing := list.Execute(ctx, map[string]any{"path": "."})
	if !strings.Contains(listing, "[d] notes") {
		t.Errorf("expected directory entry in listing, got %q", listing)
	}
}

func TestListDirEdgeCases(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	list := &ListDir{Root: root}

	if got := list.Execute(ctx, map[string]any{"path": "."}); got != "(empty directory)" {
		t.Errorf("expected empty marker, got %q", got)
	}

	if got := list.Execute(ctx, map[string]any{"path": "missing"}); !strings.Contains(got, "does not exist") {
		t.Errorf("expected missing-directory error, got %q", got)
	}
}

func TestReadFileLimits(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(root, "big.txt"), []byte(strings.Repeat("x", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "binary.bin"), []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	read := &ReadFile{Root: root, MaxSize: 10}
	if got := read.Execute(ctx, map[string]any{"path": "big.txt"}); !strings.Contains(got, "larger than") {
		t.Errorf("expected size limit error, got %q", got)
	}

	unbounded := &ReadFile{Root: root}
	if got := unbounded.Execute(ctx, map[string]any{"path": "binary.bin"}); !strings.Contains(got, "not a text file") {
		t.Errorf("expected binary rejection, got %q", got)
	}
	if got := unbounded.Execute(ctx, map[string]any{"path": "nope.txt"}); !strings.Contains(got, "does not exist") {
		t.Errorf("expected missing-file error, got %q", got)
	}
}

func TestToolsRejectEscapes(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	for _, tool := range NewFileTools(root, 0) {
		args := map[string]any{"path": "../escape.txt", "content": "x"}
		if got := tool.Execute(ctx, args); !strings.Contains(got, "outside the project root") {
			t.Errorf("%s: expected sandbox rejection, got %q", tool.Name(), got)
		}
	}
}
