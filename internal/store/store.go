// Package store persists conversations as one JSON file per name under the
// data directory. The store does no cross-process locking: independent
// processes writing the same named conversation race, and the last write
// wins. Different names never interfere.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/erg0nix/graft/internal/conversation"
	"github.com/erg0nix/graft/internal/core"
)

// Service reads and writes conversations under BaseDir/conversations.
type Service struct {
	BaseDir string
}

// Info summarizes a persisted conversation for listings.
type Info struct {
	Name      string
	Model     string
	Turns     int
	UpdatedAt time.Time
}

// fileConversation is the on-disk encoding. Unknown fields in stored files
// are ignored on load so older binaries keep reading newer files.
type fileConversation struct {
	Name         string      `json:"name"`
	Model        string      `json:"model,omitempty"`
	SystemPrompt string      `json:"system_prompt,omitempty"`
	Created      time.Time   `json:"created"`
	Modified     time.Time   `json:"modified"`
	Turns        []core.Turn `json:"turns"`
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func (service *Service) conversationsDir() string {
	return filepath.Join(service.BaseDir, "conversations")
}

func (service *Service) conversationPath(name string) string {
	return filepath.Join(service.conversationsDir(), name+".json")
}

// Save writes the conversation to <name>.json. With overwrite false, an
// existing file of the same name fails with NameConflictError; with
// overwrite true the previous contents are replaced.
func (service *Service) Save(conv *conversation.Conversation, overwrite bool) (string, error) {
	if err := ValidateName(conv.Name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(service.conversationsDir(), 0o755); err != nil {
		return "", fmt.Errorf("create conversations directory: %w", err)
	}

	path := service.conversationPath(conv.Name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", &NameConflictError{Name: conv.Name}
		}
	}

	record := fileConversation{
		Name:         conv.Name,
		Model:        conv.Model,
		SystemPrompt: conv.SystemPrompt,
		Created:      conv.CreatedAt,
		Modified:     conv.UpdatedAt,
		Turns:        conv.Turns,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode conversation: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write conversation: %w", err)
	}

	return path, nil
}

// Load reads <name>.json back into a Conversation. A missing file is a
// NotFoundError; a file that cannot be decoded into valid turns is a
// CorruptDataError.
func (service *Service) Load(name string) (*conversation.Conversation, error) {
	path := service.conversationPath(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Name: name}
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var record fileConversation
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &CorruptDataError{Name: name, Err: err}
	}

	for _, turn := range record.Turns {
		for _, block := range turn.Blocks {
			if err := block.Validate(); err != nil {
				return nil, &CorruptDataError{Name: name, Err: err}
			}
		}
	}

	if record.Name == "" {
		record.Name = name
	}

	return &conversation.Conversation{
		Name:         record.Name,
		Model:        record.Model,
		SystemPrompt: record.SystemPrompt,
		CreatedAt:    record.Created,
		UpdatedAt:    record.Modified,
		Turns:        record.Turns,
	}, nil
}

// Delete removes the persisted conversation. Deleting a name that does not
// exist fails with NotFoundError; callers that want idempotent cleanup
// check for it with errors.As.
func (service *Service) Delete(name string) error {
	path := service.conversationPath(name)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{Name: name}
		}
		return fmt.Errorf("stat conversation: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	return nil
}

// Exists reports whether a conversation with the given name is persisted.
func (service *Service) Exists(name string) bool {
	_, err := os.Stat(service.conversationPath(name))
	return err == nil
}

// List returns summaries for all persisted conversations, most recently
// modified first. Files that fail to parse are skipped with a warning
// rather than failing the whole listing.
func (service *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(service.conversationsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var result []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := service.Load(name)
		if err != nil {
			var corrupt *CorruptDataError
			if errors.As(err, &corrupt) {
				slog.Warn("skipping unreadable conversation", "name", name, "error", err)
				continue
			}
			return nil, err
		}

		result = append(result, Info{
			Name:      conv.Name,
			Model:     conv.Model,
			Turns:     len(conv.Turns),
			UpdatedAt: conv.UpdatedAt,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

// ValidateName rejects names that are empty or not filesystem-safe.
func ValidateName(name string) error {
	if name == "" {
		return errors.New("conversation needs a name")
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid conversation name %q: use letters, digits, '.', '_' or '-'", name)
	}
	return nil
}
