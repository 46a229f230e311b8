package utils

import (
	"fmt"
	"os"
	"runtime"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"golang.org/x/term"
)

// PasswordReader prompts for a single password. ReadPassword is the
// interactive implementation; tests substitute their own.
type PasswordReader func(prompt string) (string, error)

// ReadPassword prompts for a password without echoing input. When stdin is
// not a terminal (for example, data is piped in) it falls back to /dev/tty.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return readPasswordFd(fd, prompt)
	}
	return readPasswordFromTTY(prompt)
}

func readPasswordFromTTY(prompt string) (string, error) {
	ttyPath := "/dev/tty"
	if runtime.GOOS == "windows" {
		ttyPath = "CON"
	}

	tty, err := os.Open(ttyPath)
	if err != nil {
		return "", fmt.Errorf("%w: no terminal available for password input (use --password-stdin): %v", kerrors.ErrEnvironment, err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: %s is not a terminal", kerrors.ErrEnvironment, ttyPath)
	}

	return readPasswordFd(fd, prompt)
}

func readPasswordFd(fd int, prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// ReadNewPassword prompts twice and requires both entries to match.
func ReadNewPassword(read PasswordReader, prompt, confirmPrompt string) (string, error) {
	password, err := read(prompt)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", kerrors.ErrEmptyPassword
	}

	confirm, err := read(confirmPrompt)
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", kerrors.ErrPasswordMismatch
	}

	return password, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
