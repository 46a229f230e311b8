// Package logger provides leveled terminal logging for vaultrunner commands.
//
// Verbosity is controlled by the --verbose and --debug persistent flags:
//
//   - --verbose: info and warning messages
//   - --debug: everything, including debug details
//
// Errors and WarnfAlways messages are always printed to stderr.
//
// Passwords and unlocked credentials must never be passed to a Logger; log
// paths, key ids and outcomes instead.
//
//	log := logger.Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Record written to %s", path)
package logger
