package cmd

import (
	logger "github.com/PolarWolf314/vaultrunner/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	SecureCmd = &cobra.Command{
		Use:   "secure",
		Short: "Manage the password-protected vault credential",
		Long: `Creates, unlocks and rotates the password-protected vault credential,
and manages the self-signed TLS certificate used by the vault listener.

The vault lives in a directory (default .vault) containing:
  keys/vault_key.enc   the encrypted credential record
  certs/vault.crt      the TLS certificate
  certs/vault.key      the TLS private key (unencrypted, mode 0600)
  audit.jsonl          the audit log`,
		PersistentPreRunE: preRun,
	}
)

func init() {
	addVerbosityFlags(SecureCmd)

	SecureCmd.AddCommand(secureInitCmd)
	SecureCmd.AddCommand(secureExportCmd)
	SecureCmd.AddCommand(secureChangePasswordCmd)
	SecureCmd.AddCommand(secureStatusCmd)
	SecureCmd.AddCommand(secureCertCmd)
	SecureCmd.AddCommand(secureListenerConfigCmd)
}

func addVerbosityFlags(c *cobra.Command) {
	c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	c.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
}

// preRun sets up logging and loads configuration for vault and secret commands.
func preRun(cmd *cobra.Command, args []string) error {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.CommandPath(), verbose, debug)

	if err := loadConfig(); err != nil {
		return reportNow(err)
	}
	return nil
}

// Helper functions for testing

// GetSecureCmd returns the SecureCmd for testing.
func GetSecureCmd() *cobra.Command {
	return SecureCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	cfg = nil
	resetSecureInitState()
	resetSecureExportState()
	resetSecureChangePasswordState()
	resetSecureStatusState()
	resetSecureCertState()
	resetSecretsState()
	resetConfigInitState()

	for _, c := range []*cobra.Command{SecureCmd, SecretsCmd, ConfigCmd} {
		resetFlagState(c)
	}
}

// resetFlagState clears the Changed marker on every flag below c to prevent test pollution.
func resetFlagState(c *cobra.Command) {
	unset := func(flag *pflag.Flag) { flag.Changed = false }
	c.Flags().VisitAll(unset)
	c.PersistentFlags().VisitAll(unset)
	for _, child := range c.Commands() {
		resetFlagState(child)
	}
}

// SetVerbose sets the verbose flag for testing.
func SetVerbose(v bool) {
	verbose = v
}

// SetDebug sets the debug flag for testing.
func SetDebug(d bool) {
	debug = d
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
