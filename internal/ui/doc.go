// Package ui provides semantic text formatting for vaultrunner output.
//
// Each formatter names a kind of content rather than a color:
//
//	ui.Code.Sprint("vaultrunner secure init")  // Commands
//	ui.Path.Sprint(".vault/keys/vault_key.enc") // File paths
//	ui.Secret.Sprint(credential)                // One-time secret values
//	ui.Highlight.Sprint("db_password")          // User values
//
// Colors are disabled when NO_COLOR is set or the terminal does not support
// them. Plain output then falls back to decorations: Code uses backticks,
// Highlight uses single quotes and Muted uses parentheses. Secret is never
// decorated so the value can be copied as-is.
package ui
