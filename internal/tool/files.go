package tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// NewFileTools returns the file tools sandboxed to projectRoot. maxFileSize
// bounds reads; zero means no bound.
func NewFileTools(projectRoot string, maxFileSize int64) []Tool {
	return []Tool{
		&ListDir{Root: projectRoot},
		&ReadFile{Root: projectRoot, MaxSize: maxFileSize},
		&WriteFile{Root: projectRoot},
	}
}

// safePath resolves a tool-supplied path inside root, rejecting any path
// that escapes it.
func safePath(root, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	full := filepath.Join(absRoot, path)

	rel, err := filepath.Rel(absRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("access denied: path %q is outside the project root", path)
	}

	return full, nil
}

type ListDir struct {
	Root string
}

func (tool *ListDir) Name() string { return "list_dir" }

func (tool *ListDir) Description() string {
	return "List contents of a directory. Returns file names with [d] prefix for directories."
}

func (tool *ListDir) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to directory, relative to project root. Use '.' for project root.",
			},
		},
		"required": []string{"path"},
	}
}

func (tool *ListDir) Execute(_ context.Context, args map[string]any) string {
	path, _ := getStringArg("path", args)

	full, err := safePath(tool.Root, path)
	if err != nil {
		return "Error: " + err.Error()
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: directory %q does not exist", path)
		}
		return "Error: " + err.Error()
	}

	if len(entries) == 0 {
		return "(empty directory)"
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var lines []string
	for _, entry := range entries {
		prefix := "    "
		if entry.IsDir() {
			prefix = "[d] "
		}
		lines = append(lines, prefix+entry.Name())
	}

	return strings.Join(lines, "\n")
}

type ReadFile struct {
	Root    string
	MaxSize int64
}

func (tool *ReadFile) Name() string { return "read_file" }

func (tool *ReadFile) Description() string {
	return "Read the contents of a file."
}

func (tool *ReadFile) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to file, relative to project root.",
			},
		},
		"required": []string{"path"},
	}
}

func (tool *ReadFile) Execute(_ context.Context, args map[string]any) string {
	path, _ := getStringArg("path", args)

	full, err := safePath(tool.Root, path)
	if err != nil {
		return "Error: " + err.Error()
	}

	if tool.MaxSize > 0 {
		if stat, err := os.Stat(full); err == nil && stat.Size() > tool.MaxSize {
			return fmt.Sprintf("Error: file %q is larger than %d bytes", path, tool.MaxSize)
		}
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("Error: file %q does not exist", path)
		}
		return "Error: " + err.Error()
	}

	if !utf8.Valid(data) {
		return fmt.Sprintf("Error: %q is not a text file", path)
	}

	return string(data)
}

type WriteFile struct {
	Root string
}

func (tool *WriteFile) Name() string { return "write_file" }

func (tool *WriteFile) Description() string {
	return "Write content to a file. Creates the file if it doesn't exist, overwrites if it does."
}

func (tool *WriteFile) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to file, relative to project root.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Content to write to the file.",
			},
		},
		"required": []string{"path", "content"},
	}
}

func (tool *WriteFile) Execute(_ context.Context, args map[string]any) string {
	path, _ := getStringArg("path", args)
	content, ok := getStringArg("content", args)
	if !ok {
		return "Error: content is required"
	}

	full, err := safePath(tool.Root, path)
	if err != nil {
		return "Error: " + err.Error()
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "Error: " + err.Error()
	}

	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "Error: " + err.Error()
	}

	return fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), path)
}
