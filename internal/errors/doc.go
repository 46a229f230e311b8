// Package errors provides typed error values for vaultrunner.
//
// Every failure path in the vault returns one of these sentinels, wrapped with
// context, so callers can tell "no record" from "wrong password" from
// "corrupted record" with errors.Is rather than string matching.
//
// # Error Categories
//
//   - Record errors: ErrNotInitialized, ErrAlreadyInitialized, ErrFormat
//   - Crypto errors: ErrDecryption, ErrEncoding
//   - Filesystem and environment errors: ErrIO, ErrEnvironment, ErrCertificateNotFound, ErrInvalidConfig
//   - Prompt errors: ErrPasswordMismatch, ErrEmptyPassword
//   - Secret store errors: ErrSecretNotFound, ErrSecretStore
//
// # Usage
//
// Wrap with both the category and the underlying cause:
//
//	if err := os.MkdirAll(dir, 0700); err != nil {
//	    return fmt.Errorf("%w: creating %s: %w", kerrors.ErrIO, dir, err)
//	}
//
// Handle in the CLI layer:
//
//	key, err := workflows.Export(ctx, opts)
//	if errors.Is(err, kerrors.ErrDecryption) {
//	    // Incorrect password
//	}
//
// Cryptographic failures are never retried; the caller obtains a corrected
// password and runs the whole operation again.
package errors
