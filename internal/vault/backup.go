package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

// BackupVersion is the schema version of backup archives written by this package.
const BackupVersion = "1.0"

// Backup is the decrypted content of a backup archive. Secrets maps full
// secret store paths to their values.
type Backup struct {
	Metadata BackupMetadata    `json:"metadata"`
	Secrets  map[string]string `json:"secrets"`
}

// BackupMetadata is stored inside the encrypted archive.
type BackupMetadata struct {
	CreatedAt   string `json:"created_at"`
	Namespace   string `json:"namespace"`
	SecretCount int    `json:"secret_count"`
	Version     string `json:"version"`
}

// NewBackup stamps secrets with archive metadata.
func NewBackup(namespace string, secrets map[string]string, now time.Time) *Backup {
	return &Backup{
		Metadata: BackupMetadata{
			CreatedAt:   now.UTC().Format(time.RFC3339),
			Namespace:   namespace,
			SecretCount: len(secrets),
			Version:     BackupVersion,
		},
		Secrets: secrets,
	}
}

// BackupsDir is the default location for backup archives.
func (v *Vault) BackupsDir() string {
	return filepath.Join(v.Dir, "backups")
}

// WriteBackup encrypts b under password with the same routine as the
// credential record and writes it atomically to path with mode 0600.
func WriteBackup(path string, b *Backup, password string) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}

	token, err := Encrypt(string(data), password)
	if err != nil {
		return fmt.Errorf("encrypting backup: %w", err)
	}

	return writeBytesAtomic(path, []byte(token+"\n"), 0600)
}

// ReadBackup decrypts the archive at path.
//
// Returns ErrDecryption for a wrong password and ErrFormat when the archive
// is malformed or of an unknown version.
func ReadBackup(path, password string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading backup %s: %w", kerrors.ErrIO, path, err)
	}

	plaintext, err := Decrypt(string(trimNewline(data)), password)
	if err != nil {
		return nil, err
	}

	var b Backup
	if err := json.Unmarshal([]byte(plaintext), &b); err != nil {
		return nil, fmt.Errorf("%w: backup %s: %v", kerrors.ErrFormat, path, err)
	}
	if b.Metadata.Version != BackupVersion {
		return nil, fmt.Errorf("%w: backup %s has unsupported version %q", kerrors.ErrFormat, path, b.Metadata.Version)
	}
	if b.Secrets == nil {
		b.Secrets = map[string]string{}
	}
	return &b, nil
}

func trimNewline(data []byte) []byte {
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}
	return data
}
