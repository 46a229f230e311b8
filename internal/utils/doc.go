// Package utils provides password input and system helpers for vaultrunner.
//
// # Password Input
//
// Passwords are never accepted from the environment. They come from one of:
//   - ReadPassword: interactive prompt on the terminal, no echo
//   - ReadPasswordStdin: first line of piped stdin (--password-stdin)
//   - an explicit --password flag handled by the cmd package
//
// ReadNewPassword wraps any PasswordReader with a confirmation prompt and
// returns errors.ErrPasswordMismatch when the entries differ.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
package utils
