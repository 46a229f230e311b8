// Package vault protects a secret-store root credential at rest.
//
// A Vault owns two directories under its root:
//
//	<dir>/keys/vault_key.enc   encrypted credential record (JSON)
//	<dir>/certs/vault.crt      self-signed TLS certificate (PEM)
//	<dir>/certs/vault.key      unencrypted PKCS#8 private key (PEM)
//	<dir>/backups/*.enc        encrypted secret archives (default location)
//
// # Encryption
//
// The credential is wrapped with a key derived from the user's password:
//
//  1. A random 16-byte salt and 16-byte IV are drawn for every encryption
//  2. PBKDF2-HMAC-SHA256 with KDFIterations rounds derives a 256-bit key
//  3. AES-256-CBC encrypts the PKCS#7 padded credential
//  4. base64(salt || iv || ciphertext) is stored as encrypted_key
//
// CBC without a MAC cannot tell a wrong password apart from corruption with
// certainty. Decrypt rejects out-of-range or non-uniform padding and
// non-UTF-8 plaintext, which catches nearly every wrong password.
//
// # Lifecycle
//
// Initialize generates a 256-bit credential, returns it exactly once and
// stores it encrypted. Export decrypts it with the password. Rotate re-wraps
// the same credential under a new password. LoadMetadata reads the non-secret
// fields without a password.
//
// Every write replaces the whole file atomically. There is no cross-process
// locking; callers must serialize access to a vault directory.
//
// # Certificates
//
// IssueCertificate creates a 2048-bit RSA key and a certificate valid for 365
// days with SANs for the common name, localhost, 127.0.0.1 and ::1. The
// private key is not encrypted; protect the directory.
package vault
