package errors

import "errors"

// Record errors describe the state and shape of the encrypted credential record.
var (
	// ErrNotInitialized indicates no encrypted credential record exists in the vault directory.
	ErrNotInitialized = errors.New("vault has not been initialized")

	// ErrAlreadyInitialized indicates a record already exists and overwrite was not requested.
	ErrAlreadyInitialized = errors.New("vault has already been initialized")

	// ErrFormat indicates a stored token or record is malformed.
	ErrFormat = errors.New("malformed encrypted record")
)

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrDecryption indicates the recovered plaintext failed validation, usually a wrong password.
	ErrDecryption = errors.New("failed to decrypt credential")

	// ErrEncoding indicates the plaintext could not be represented as UTF-8.
	ErrEncoding = errors.New("plaintext is not valid UTF-8")
)

// Filesystem and environment errors.
var (
	// ErrIO indicates a filesystem operation failed.
	ErrIO = errors.New("filesystem operation failed")

	// ErrEnvironment indicates a missing prerequisite, such as an interactive terminal.
	ErrEnvironment = errors.New("environment prerequisite missing")

	// ErrCertificateNotFound indicates the TLS certificate bundle has not been issued.
	ErrCertificateNotFound = errors.New("ssl certificate not found")

	// ErrInvalidConfig indicates the configuration file or overrides are invalid.
	ErrInvalidConfig = errors.New("configuration is invalid")
)

// Password errors come from the interactive prompt layer.
var (
	// ErrPasswordMismatch indicates the password confirmation did not match.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrEmptyPassword indicates an empty password was supplied.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Secret store errors come from the KV client.
var (
	// ErrSecretNotFound indicates the requested secret path does not exist.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretStore indicates the secret store rejected a request.
	ErrSecretStore = errors.New("secret store request failed")
)
