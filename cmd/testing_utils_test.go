package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"testing"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
	"github.com/spf13/cobra"
)

// setupTestEnvironment moves into a fresh directory, clears environment
// overrides and resets command state. It returns the directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	tempDir := t.TempDir()
	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Setenv("NO_COLOR", "1")
	// Empty values are ignored by configs.Load.
	for _, key := range []string{
		configs.EnvVaultDir, configs.EnvCommonName, configs.EnvSecretNamespace, configs.EnvEnvFile,
		configs.EnvAddress, configs.EnvToken, configs.EnvNamespace,
	} {
		t.Setenv(key, "")
	}

	originalReadPassword := readPassword
	ResetGlobalState()

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		readPassword = originalReadPassword
		ResetGlobalState()
	})

	return tempDir
}

// runCLI executes the command tree with args and returns combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, stderr, err := runCLIStreams(t, args...)
	return stdout + stderr, err
}

// runCLIStreams is runCLI with stdout and stderr kept apart.
func runCLIStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	ResetGlobalState()

	rootCmd := &cobra.Command{
		Use:           "vaultrunner",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	RegisterGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(SecureCmd, SecretsCmd, ConfigCmd)
	rootCmd.SetArgs(args)

	return captureStreams(rootCmd.Execute)
}

// scriptedPasswords answers prompts from a fixed list.
func scriptedPasswords(t *testing.T, answers ...string) {
	t.Helper()
	readPassword = func(prompt string) (string, error) {
		if len(answers) == 0 {
			t.Fatalf("Unexpected password prompt %q", prompt)
		}
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
}

// captureStreams captures stdout and stderr separately during function execution.
func captureStreams(fn func() error) (string, string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	collect := func(r io.Reader, out chan<- string) {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, r); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		out <- buf.String()
	}
	go collect(stdoutReader, stdoutChan)
	go collect(stderrReader, stderrChan)

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan, <-stderrChan, err
}
