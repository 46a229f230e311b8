package cmd

import (
	"github.com/PolarWolf314/vaultrunner/internal/utils"
)

// Overridable in tests.
var (
	readPassword      utils.PasswordReader = utils.ReadPassword
	readPasswordStdin                      = utils.ReadPasswordStdin
)

// resolvePassword returns the password from the flag, from stdin, or from an
// interactive prompt, in that order.
func resolvePassword(flagValue string, fromStdin bool, prompt string) (string, error) {
	if flagValue != "" {
		Logger.WarnfAlways("Passing a password with a flag exposes it in shell history and process listings")
		return flagValue, nil
	}
	if fromStdin {
		Logger.Debugf("Reading password from stdin")
		return readPasswordStdin()
	}
	return readPassword(prompt)
}

// resolveNewPassword is resolvePassword with confirmation for interactive entry.
func resolveNewPassword(flagValue string, fromStdin bool, prompt string) (string, error) {
	if flagValue != "" || fromStdin {
		return resolvePassword(flagValue, fromStdin, prompt)
	}
	return utils.ReadNewPassword(readPassword, prompt, "Confirm password: ")
}
