// Package audit records vault operations in a JSON Lines log.
//
// The log lives next to the vault's keys and certs directories:
//
//	<vault dir>/audit.jsonl
//
// Each entry contains a UTC timestamp with microseconds, the operating system
// user, the operation name and operation-specific details such as the key id
// or the secret path. Passwords and credentials are never recorded.
//
//	entry := audit.LogWithUser("change-password")
//	entry.KeyID = info.KeyID
//	audit.Log(cfg.Vault.Dir, entry)
//
// Audit logging is best-effort: failures are ignored so an unwritable log
// never blocks a password rotation. Malformed lines are skipped on read.
package audit
