package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

// ReadPasswordStdin reads a password piped on stdin.
// Returns an error if stdin is a terminal (no piped data) or empty.
func ReadPasswordStdin() (string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat stdin: %w", err)
	}

	// If ModeCharDevice is set, stdin is connected to a terminal.
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("%w: no data provided on stdin (hint: pipe the password to this command)", kerrors.ErrEnvironment)
	}

	return ReadPasswordFrom(os.Stdin)
}

// ReadPasswordFrom reads the first line of r as a password, dropping the
// line terminator. Surrounding spaces are kept since they may be intentional.
func ReadPasswordFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", kerrors.ErrEmptyPassword
	}

	return password, nil
}
