package cmd

import (
	"fmt"
	"os"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/spf13/cobra"
)

var (
	configInitForce   bool
	configInitAddress string
	configInitDir     string
)

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configInitCmd.Flags().StringVar(&configInitAddress, "address", "", "secret store address, e.g. https://127.0.0.1:8200")
	configInitCmd.Flags().StringVar(&configInitDir, "vault-dir", "", "vault directory (default "+configs.DefaultVaultDir+")")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
	configInitAddress = ""
	configInitDir = ""
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Long: `Writes a config file containing every setting with its default value.
The secret store token is never written to the file; set VAULT_TOKEN or let
vaultrunner unlock it from the vault.

Examples:
  vaultrunner config init
  vaultrunner config init --address https://127.0.0.1:8200 --vault-dir /srv/vault`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config init command")

		path := resolvedConfigPath()
		if _, err := os.Stat(path); err == nil && !configInitForce {
			fmt.Println(ui.Error.Sprint("✗") + " " + ui.Path.Sprint(path) + " already exists\n" +
				ui.Info.Sprint("→") + " Use " + ui.Flag.Sprint("--force") + " to overwrite it")
			return ErrReported
		}

		newCfg := configs.Default()
		if configInitAddress != "" {
			newCfg.SecretStore.Address = configInitAddress
		}
		if configInitDir != "" {
			newCfg.Vault.Dir = configInitDir
		}
		if err := newCfg.Validate(); err != nil {
			return reportNow(err)
		}

		if err := configs.Save(path, newCfg); err != nil {
			return reportNow(err)
		}
		Logger.Infof("Config written to %s", path)

		fmt.Println(ui.Success.Sprint("✓") + " Wrote " + ui.Path.Sprint(path))
		return nil
	},
}
