package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
)

// fakeSecretStore serves the subset of the KV v2 API the CLI uses and only
// accepts requests carrying token.
func fakeSecretStore(t *testing.T, token *string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	secrets := map[string]string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		if r.Header.Get("X-Vault-Token") != *token {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}

		if key, ok := strings.CutPrefix(r.URL.Path, "/v1/secret/data/"); ok {
			switch r.Method {
			case http.MethodPost:
				var body struct {
					Data map[string]string `json:"data"`
				}
				_ = json.NewDecoder(r.Body).Decode(&body)
				secrets[key] = body.Data["value"]
				return
			case http.MethodGet:
				value, found := secrets[key]
				if !found {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"data": map[string]string{"value": value}}})
				return
			}
		}

		if prefix, ok := strings.CutPrefix(r.URL.Path, "/v1/secret/metadata/"); ok {
			switch r.Method {
			case http.MethodGet:
				keys := []string{}
				for key := range secrets {
					if rest, found := strings.CutPrefix(key, prefix+"/"); found {
						keys = append(keys, rest)
					}
				}
				if len(keys) == 0 {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"keys": keys}})
				return
			case http.MethodDelete:
				delete(secrets, prefix)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSecrets_WithVaultCredential(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	credential := exportRawCredential(t, "pw")

	srv := fakeSecretStore(t, &credential)
	t.Setenv(configs.EnvAddress, srv.URL)

	output, err := runCLI(t, "secrets", "put", "db_password", "s3cr3t", "--password", "pw")
	if err != nil {
		t.Fatalf("put failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Stored 'shared/db_password'") {
		t.Errorf("Expected stored message, got: %s", output)
	}

	output, err = runCLI(t, "secrets", "get", "db_password", "--password", "pw")
	if err != nil {
		t.Fatalf("get failed: %v\nOutput: %s", err, output)
	}
	if !strings.HasPrefix(output, "s3cr3t\n") {
		t.Errorf("Expected only the value on stdout, got: %q", output)
	}

	output, err = runCLI(t, "secrets", "list", "--password", "pw")
	if err != nil {
		t.Fatalf("list failed: %v\nOutput: %s", err, output)
	}
	if !strings.HasPrefix(output, "db_password\n") {
		t.Errorf("Expected secret name in listing, got: %q", output)
	}

	if output, err := runCLI(t, "secrets", "delete", "db_password", "--password", "pw"); err != nil {
		t.Fatalf("delete failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "secrets", "get", "db_password", "--password", "pw")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Secret not found") {
		t.Errorf("Expected not found after delete, got err=%v output=%s", err, output)
	}
}

func TestSecrets_ExplicitToken(t *testing.T) {
	setupTestEnvironment(t)

	token := "explicit-token"
	srv := fakeSecretStore(t, &token)
	t.Setenv(configs.EnvAddress, srv.URL)
	t.Setenv(configs.EnvToken, token)

	// No vault and no password: the configured token is used as-is.
	if output, err := runCLI(t, "secrets", "put", "api_key", "k"); err != nil {
		t.Fatalf("put failed: %v\nOutput: %s", err, output)
	}

	output, err := runCLI(t, "secrets", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(output, "api_key") {
		t.Errorf("Expected api_key in listing, got: %s", output)
	}
}

func TestSecrets_WrongPassword(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	token := "unused"
	srv := fakeSecretStore(t, &token)
	t.Setenv(configs.EnvAddress, srv.URL)

	output, err := runCLI(t, "secrets", "get", "db_password", "--password", "nope")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Incorrect password") {
		t.Errorf("Expected incorrect password, got err=%v output=%s", err, output)
	}
}

func TestSecrets_NoAddress(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secrets", "list", "--password", "pw")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Invalid configuration") {
		t.Errorf("Expected invalid configuration, got err=%v output=%s", err, output)
	}
}

func TestSecrets_BackupRestore(t *testing.T) {
	dir := setupTestEnvironment(t)

	token := "explicit-token"
	srv := fakeSecretStore(t, &token)
	t.Setenv(configs.EnvAddress, srv.URL)
	t.Setenv(configs.EnvToken, token)

	for _, args := range [][]string{{"db_password", "p@ss"}, {"services/api_key", "k3y"}} {
		if output, err := runCLI(t, "secrets", "put", args[0], args[1]); err != nil {
			t.Fatalf("put failed: %v\nOutput: %s", err, output)
		}
	}

	archive := filepath.Join(dir, "nightly.enc")
	output, err := runCLI(t, "secrets", "backup", "-o", archive, "--backup-password", "bk")
	if err != nil {
		t.Fatalf("backup failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Backed up 2 secrets from 'shared'") {
		t.Errorf("Expected backup summary, got: %s", output)
	}

	if output, err := runCLI(t, "secrets", "delete", "db_password"); err != nil {
		t.Fatalf("delete failed: %v\nOutput: %s", err, output)
	}

	output, err = runCLI(t, "secrets", "restore", archive, "--backup-password", "wrong")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Incorrect password") {
		t.Errorf("Expected incorrect password, got err=%v output=%s", err, output)
	}

	output, err = runCLI(t, "secrets", "restore", archive, "--backup-password", "bk", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "• shared/db_password") || !strings.Contains(output, "nothing was written") {
		t.Errorf("Expected dry run listing, got: %s", output)
	}
	output, err = runCLI(t, "secrets", "get", "db_password")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Secret not found") {
		t.Errorf("Dry run should not restore, got err=%v output=%s", err, output)
	}

	output, err = runCLI(t, "secrets", "restore", archive, "--backup-password", "bk")
	if err != nil {
		t.Fatalf("restore failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Restored 2 secrets") {
		t.Errorf("Expected restore summary, got: %s", output)
	}

	output, err = runCLI(t, "secrets", "get", "db_password")
	if err != nil || !strings.HasPrefix(output, "p@ss\n") {
		t.Errorf("Expected restored value, got err=%v output=%q", err, output)
	}
}

func TestSecrets_BackupPromptsWithConfirmation(t *testing.T) {
	setupTestEnvironment(t)

	token := "explicit-token"
	srv := fakeSecretStore(t, &token)
	t.Setenv(configs.EnvAddress, srv.URL)
	t.Setenv(configs.EnvToken, token)

	if output, err := runCLI(t, "secrets", "put", "api_key", "k"); err != nil {
		t.Fatalf("put failed: %v\nOutput: %s", err, output)
	}

	scriptedPasswords(t, "bk", "different")
	output, err := runCLI(t, "secrets", "backup")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Passwords do not match") {
		t.Errorf("Expected mismatch, got err=%v output=%s", err, output)
	}
}
