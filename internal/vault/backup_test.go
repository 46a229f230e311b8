package vault

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

func TestBackup_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backups", "vault_backup.enc")
	secrets := map[string]string{
		"shared/db_password":      "p@ss",
		"shared/services/api_key": "k3y",
	}
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	if err := WriteBackup(path, NewBackup("shared", secrets, now), "backup-password"); err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}

	raw := string(readFile(t, path))
	if strings.Contains(raw, "p@ss") || strings.Contains(raw, "db_password") {
		t.Error("Backup file contains plaintext")
	}

	got, err := ReadBackup(path, "backup-password")
	if err != nil {
		t.Fatalf("ReadBackup failed: %v", err)
	}
	if got.Metadata.Namespace != "shared" || got.Metadata.SecretCount != 2 || got.Metadata.Version != BackupVersion {
		t.Errorf("Unexpected metadata %+v", got.Metadata)
	}
	if got.Metadata.CreatedAt != "2026-03-14T09:26:53Z" {
		t.Errorf("Unexpected creation time %q", got.Metadata.CreatedAt)
	}
	for key, want := range secrets {
		if got.Secrets[key] != want {
			t.Errorf("Expected %s=%q, got %q", key, want, got.Secrets[key])
		}
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Failed to stat backup: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("Expected backup permissions 0600, got %o", perm)
		}
	}
}

func TestReadBackup_Errors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault_backup.enc")
	if err := WriteBackup(path, NewBackup("shared", map[string]string{"shared/x": "y"}, time.Now()), "right"); err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}

	if _, err := ReadBackup(path, "wrong"); !errors.Is(err, kerrors.ErrDecryption) {
		t.Errorf("Expected ErrDecryption for wrong password, got %v", err)
	}

	if _, err := ReadBackup(filepath.Join(dir, "missing.enc"), "right"); !errors.Is(err, kerrors.ErrIO) {
		t.Errorf("Expected ErrIO for missing file, got %v", err)
	}

	futureToken, err := Encrypt(`{"metadata":{"version":"9.9"},"secrets":{}}`, "right")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	future := filepath.Join(dir, "future.enc")
	if err := os.WriteFile(future, []byte(futureToken), 0600); err != nil {
		t.Fatalf("Failed to write archive: %v", err)
	}
	if _, err := ReadBackup(future, "right"); !errors.Is(err, kerrors.ErrFormat) {
		t.Errorf("Expected ErrFormat for unknown version, got %v", err)
	}

	notJSONToken, err := Encrypt("not json", "right")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	notJSON := filepath.Join(dir, "not-json.enc")
	if err := os.WriteFile(notJSON, []byte(notJSONToken), 0600); err != nil {
		t.Fatalf("Failed to write archive: %v", err)
	}
	if _, err := ReadBackup(notJSON, "right"); !errors.Is(err, kerrors.ErrFormat) {
		t.Errorf("Expected ErrFormat for non-JSON content, got %v", err)
	}
}
