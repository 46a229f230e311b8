// Package workflows provides high-level orchestration for vaultrunner commands.
//
// Workflows coordinate the vault, secretstore and audit packages to implement
// complete user-facing features. Each workflow handles a single command's
// business logic, independent of CLI concerns like flag parsing, password
// prompts, spinners and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Collects passwords (prompt, flag or stdin)
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving the vault directory from the supplied configuration
//   - Validating prerequisites
//   - Performing the core operation
//   - Recording audit trail entries
//
// Configuration is always passed in explicitly through the options struct.
// No workflow reads or writes environment variables.
//
// # Available Workflows
//
//   - Init: Generates the credential, issues the certificate, writes the record
//   - Export: Decrypts and returns the stored credential
//   - ChangePassword: Re-encrypts the credential under a new password
//   - Status: Reports record, certificate and secret store state without a password
//   - IssueCertificate: Issues or reissues the TLS bundle
//   - ListenerConfig: Builds a server listener configuration for the bundle
//   - OpenSecretStore, PutSecret, GetSecret, ListSecrets, DeleteSecret: Manage
//     shared secrets using the unlocked credential as the access token
//   - Backup, Restore: Move a whole secret namespace to and from an encrypted archive
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package:
//
//	result, err := workflows.Export(ctx, opts)
//	if errors.Is(err, kerrors.ErrDecryption) {
//	    // Wrong password
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// It is checked before key derivation, and passed through to secret store
// requests.
package workflows
