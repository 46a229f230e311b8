package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/utils"
)

// LogFile is the audit log name inside the vault directory.
const LogFile = "audit.jsonl"

// Entry represents a single audit log entry. It never carries passwords or credentials.
type Entry struct {
	Timestamp string `json:"ts"` // RFC3339 with microseconds.
	User      string `json:"user,omitempty"`
	Operation string `json:"op"`

	// Optional fields depending on operation.
	KeyID      string `json:"key_id,omitempty"`      // For init/export/change-password.
	CommonName string `json:"common_name,omitempty"` // For init/cert.
	Path       string `json:"path,omitempty"`        // Secret path for secrets operations.
	Outcome    string `json:"outcome,omitempty"`     // "ok" or a failure category.
}

// Log appends an entry to the audit log under vaultDir.
// Operations should not fail just because audit logging failed.
func Log(vaultDir string, entry Entry) {
	if vaultDir == "" {
		return
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(vaultDir, 0700); err != nil {
		return
	}

	f, err := os.OpenFile(LogPath(vaultDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// LogWithUser returns an entry with the operating system user filled in.
func LogWithUser(op string) Entry {
	entry := Entry{Operation: op}
	if username, err := utils.GetUsername(); err == nil {
		entry.User = username
	}
	return entry
}

// LogPath returns the audit log path for vaultDir.
func LogPath(vaultDir string) string {
	return filepath.Join(vaultDir, LogFile)
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(vaultDir string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(vaultDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Last returns the most recent entry for op, or nil if none exists.
func Last(entries []Entry, op string) *Entry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Operation == op {
			return &entries[i]
		}
	}
	return nil
}
