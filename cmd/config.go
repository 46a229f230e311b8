package cmd

import (
	logger "github.com/PolarWolf314/vaultrunner/internal/logging"
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vaultrunner configuration",
	Long: `Provides commands for creating and inspecting the configuration file.

Settings are resolved from built-in defaults, then .vaultrunner.toml (or
--config), then the dotenv file named by secret_store.env_file, then
environment variables such as VAULT_ADDR and VAULTRUNNER_VAULT_DIR.

Examples:
  # Write a config file with the defaults
  vaultrunner config init

  # Show the effective configuration
  vaultrunner config show`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		Logger = logger.Logger{
			Verbose: verbose,
			Debug:   debug,
		}
		Logger.Debugf("Initializing config command with verbose=%t, debug=%t", verbose, debug)
	},
}

func init() {
	addVerbosityFlags(ConfigCmd)

	ConfigCmd.AddCommand(configInitCmd)
	ConfigCmd.AddCommand(configShowCmd)
}

// GetConfigCmd returns the ConfigCmd for testing.
func GetConfigCmd() *cobra.Command {
	return ConfigCmd
}
