package cmd

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var secretsDeleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Short:   "Delete a shared secret and all of its versions",
	Args:    cobra.ExactArgs(1),
	Example: `  vaultrunner secrets delete db_password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets delete command")

		opts, err := secretStoreOptions()
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Deleting secret...")
		defer cleanup()

		path, err := workflows.DeleteSecret(context.Background(), workflows.DeleteSecretOptions{
			SecretStoreOptions: opts,
			Name:               args[0],
		})
		if err != nil {
			return report(spinner, err)
		}

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Deleted " + ui.Highlight.Sprint(path)
		return nil
	},
}
