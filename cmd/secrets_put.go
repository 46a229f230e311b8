package cmd

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var secretsPutCmd = &cobra.Command{
	Use:   "put NAME VALUE",
	Short: "Store a shared secret",
	Args:  cobra.ExactArgs(2),
	Example: `  vaultrunner secrets put db_password 's3cr3t'
  vaultrunner secrets put services/api_key "$API_KEY"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets put command")

		opts, err := secretStoreOptions()
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Storing secret...")
		defer cleanup()

		path, err := workflows.PutSecret(context.Background(), workflows.PutSecretOptions{
			SecretStoreOptions: opts,
			Name:               args[0],
			Value:              args[1],
		})
		if err != nil {
			return report(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Stored " + ui.Highlight.Sprint(path)
		return nil
	},
}
