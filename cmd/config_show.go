package cmd

import (
	"fmt"
	"strconv"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/spf13/cobra"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Shows the configuration after defaults, the config file, the env file and
environment variables have been applied. The token is never printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting config show command")

		loaded, err := configs.Load(resolvedConfigPath())
		if err != nil {
			return reportNow(err)
		}

		token := "not set"
		if loaded.SecretStore.Token != "" {
			token = "set"
		}

		fmt.Println(ui.Info.Sprint("[vault]"))
		fmt.Print(ui.Fields(
			ui.Field{Label: "dir", Value: loaded.Vault.Dir},
			ui.Field{Label: "common_name", Value: loaded.Vault.CommonName},
			ui.Field{Label: "listen_address", Value: loaded.Vault.ListenAddress},
			ui.Field{Label: "storage_path", Value: loaded.Vault.StoragePath},
			ui.Field{Label: "disable_ui", Value: strconv.FormatBool(loaded.Vault.DisableUI)},
		))
		fmt.Println(ui.Info.Sprint("[secret_store]"))
		fmt.Print(ui.Fields(
			ui.Field{Label: "address", Value: loaded.SecretStore.Address},
			ui.Field{Label: "namespace", Value: loaded.SecretStore.Namespace},
			ui.Field{Label: "mount", Value: loaded.SecretStore.Mount},
			ui.Field{Label: "secret_namespace", Value: loaded.SecretStore.SecretNamespace},
			ui.Field{Label: "env_file", Value: loaded.SecretStore.EnvFile},
			ui.Field{Label: "token", Value: ui.Muted.Sprint(token)},
		))
		return nil
	},
}
