package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var secureListenerConfigCmd = &cobra.Command{
	Use:   "listener-config",
	Short: "Print a server configuration using the vault certificate",
	Long: `Prints a JSON server configuration whose TCP listener serves TLS with the
vault's certificate and key. The listen address, storage path and UI setting
come from the [vault] section of the config file.

Examples:
  vaultrunner secure listener-config > /etc/vault.d/listener.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure listener-config command")

		server, err := workflows.ListenerConfig(context.Background(), workflows.ListenerConfigOptions{Config: cfg})
		if err != nil {
			return reportNow(err)
		}

		data, err := server.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}
