package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

func exportRawCredential(t *testing.T, password string) string {
	t.Helper()
	output, err := runCLI(t, "secure", "export", "--raw", "--password", password)
	if err != nil {
		t.Fatalf("Export failed: %v\nOutput: %s", err, output)
	}
	return strings.SplitN(output, "\n", 2)[0]
}

func TestSecureInit(t *testing.T) {
	tempDir := setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "init", "--password", "Tr0ub4dor&3")
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Vault initialized") {
		t.Errorf("Expected success message, got: %s", output)
	}
	if !strings.Contains(output, "Issued a new certificate for 'localhost'") {
		t.Errorf("Expected certificate message, got: %s", output)
	}

	for _, rel := range []string{".vault/keys/vault_key.enc", ".vault/certs/vault.crt", ".vault/certs/vault.key"} {
		if _, err := os.Stat(filepath.Join(tempDir, rel)); err != nil {
			t.Errorf("Expected %s to exist: %v", rel, err)
		}
	}

	credential := exportRawCredential(t, "Tr0ub4dor&3")
	if len(credential) != 64 {
		t.Fatalf("Expected a 64 character credential, got %q", credential)
	}
	if strings.Contains(output, credential) {
		t.Error("Credential printed without --export-key")
	}
}

func TestSecureInit_ExportKey(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "init", "--password", "pw", "--export-key")
	if err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}

	credential := exportRawCredential(t, "pw")
	if !strings.Contains(output, credential) {
		t.Errorf("Expected credential in output with --export-key, got: %s", output)
	}
}

func TestSecureInit_AlreadyInitialized(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("First init failed: %v", err)
	}
	first := exportRawCredential(t, "pw")

	output, err := runCLI(t, "secure", "init", "--password", "pw")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(output, "already initialized") {
		t.Errorf("Expected already initialized message, got: %s", output)
	}

	output, err = runCLI(t, "secure", "init", "--password", "pw2", "--force")
	if err != nil {
		t.Fatalf("Forced init failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Kept the existing certificate") {
		t.Errorf("Expected certificate to be kept, got: %s", output)
	}
	if exportRawCredential(t, "pw2") == first {
		t.Error("Forced init kept the old credential")
	}
}

func TestSecureInit_InteractivePrompts(t *testing.T) {
	setupTestEnvironment(t)

	scriptedPasswords(t, "one", "two")
	output, err := runCLI(t, "secure", "init")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(output, "Passwords do not match") {
		t.Errorf("Expected mismatch message, got: %s", output)
	}
	if _, err := os.Stat(".vault"); !os.IsNotExist(err) {
		t.Error("Vault directory created despite mismatched passwords")
	}

	scriptedPasswords(t, "same", "same")
	if output, err := runCLI(t, "secure", "init"); err != nil {
		t.Fatalf("Interactive init failed: %v\nOutput: %s", err, output)
	}
	scriptedPasswords(t, "same")
	if output, err := runCLI(t, "secure", "export"); err != nil {
		t.Fatalf("Interactive export failed: %v\nOutput: %s", err, output)
	}
}

func TestSecureExport_Errors(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "export", "--password", "pw")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(output, "has not been initialized") {
		t.Errorf("Expected not initialized message, got: %s", output)
	}

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	output, err = runCLI(t, "secure", "export", "--password", "wrong")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if !strings.Contains(output, "Incorrect password") {
		t.Errorf("Expected incorrect password message, got: %s", output)
	}
}

func TestSecureExport_RawErrorsGoToStderr(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	stdout, stderr, err := runCLIStreams(t, "secure", "export", "--raw", "--password", "wrong")
	if !errors.Is(err, ErrReported) {
		t.Fatalf("Expected ErrReported, got %v", err)
	}
	if stdout != "" {
		t.Errorf("Expected nothing on stdout, got: %q", stdout)
	}
	if !strings.Contains(stderr, "Incorrect password") {
		t.Errorf("Expected incorrect password message on stderr, got: %s", stderr)
	}

	stdout, _, err = runCLIStreams(t, "secure", "export", "--raw", "--password", "pw")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(strings.TrimSpace(stdout)) != 64 {
		t.Errorf("Expected only the credential on stdout, got: %q", stdout)
	}
}

func TestSecureChangePassword(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := runCLI(t, "secure", "init", "--password", "old"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	before := exportRawCredential(t, "old")

	output, err := runCLI(t, "secure", "change-password", "--old-password", "wrong", "--new-password", "new")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "Incorrect password") {
		t.Fatalf("Expected incorrect password, got err=%v output=%s", err, output)
	}

	output, err = runCLI(t, "secure", "change-password", "--old-password", "old", "--new-password", "new")
	if err != nil {
		t.Fatalf("Change password failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Password changed") {
		t.Errorf("Expected success message, got: %s", output)
	}

	if after := exportRawCredential(t, "new"); after != before {
		t.Error("Credential changed along with the password")
	}
}

func TestSecureStatus(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "status")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !strings.Contains(output, "Vault not initialized") {
		t.Errorf("Expected not initialized status, got: %s", output)
	}

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	exportRawCredential(t, "pw")

	output, err = runCLI(t, "secure", "status")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	for _, want := range []string{"Vault initialized", "Certificate valid", "Key ID:", "Last export:"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in status output: %s", want, output)
		}
	}

	output, err = runCLI(t, "secure", "status", "--json")
	if err != nil {
		t.Fatalf("Status --json failed: %v", err)
	}
	var decoded statusOutput
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("Status --json is not valid JSON: %v\n%s", err, output)
	}
	if !decoded.Initialized || decoded.Version != vault.RecordVersion || decoded.LastExport == nil {
		t.Errorf("Unexpected JSON status: %+v", decoded)
	}
	if decoded.Metadata[vault.MetaKeyID] == "" {
		t.Error("Expected key id in metadata")
	}
}

func TestSecureCert(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "cert", "--common-name", "vault.internal")
	if err != nil {
		t.Fatalf("Cert failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "Certificate issued for 'vault.internal'") {
		t.Errorf("Expected issuance message, got: %s", output)
	}

	output, err = runCLI(t, "secure", "cert", "--force")
	if err != nil {
		t.Fatalf("Forced reissue failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "'localhost'") {
		t.Errorf("Expected default common name on reissue, got: %s", output)
	}
}

func TestSecureListenerConfig(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "secure", "listener-config")
	if !errors.Is(err, ErrReported) || !strings.Contains(output, "No TLS certificate") {
		t.Fatalf("Expected missing certificate error, got err=%v output=%s", err, output)
	}

	if _, err := runCLI(t, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	output, err = runCLI(t, "secure", "listener-config")
	if err != nil {
		t.Fatalf("listener-config failed: %v", err)
	}
	var server vault.ServerConfig
	if err := json.Unmarshal([]byte(output), &server); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, output)
	}
	if server.Listener.TCP.TLSCertFile != filepath.Join(".vault", "certs", vault.CertificateFile) {
		t.Errorf("Unexpected certificate path %q", server.Listener.TCP.TLSCertFile)
	}
	if !server.UI {
		t.Error("Expected UI enabled by default")
	}
}

func TestSecure_ConfigFile(t *testing.T) {
	tempDir := setupTestEnvironment(t)

	configFile := filepath.Join(tempDir, "custom.toml")
	if output, err := runCLI(t, "--config", configFile, "config", "init", "--vault-dir", "state"); err != nil {
		t.Fatalf("config init failed: %v\nOutput: %s", err, output)
	}

	if output, err := runCLI(t, "--config", configFile, "secure", "init", "--password", "pw"); err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "state", "keys", vault.RecordFile)); err != nil {
		t.Errorf("Expected record in configured vault dir: %v", err)
	}
}
