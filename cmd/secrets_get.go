package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var secretsGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a shared secret",
	Long: `Prints the value of a shared secret, followed by a newline, and nothing else
so the output can be captured by scripts.`,
	Args:    cobra.ExactArgs(1),
	Example: `  DB_PASSWORD=$(vaultrunner secrets get db_password --password-stdin < pw.txt)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets get command")

		opts, err := secretStoreOptions()
		if err != nil {
			return reportNow(err)
		}

		value, err := workflows.GetSecret(context.Background(), workflows.GetSecretOptions{
			SecretStoreOptions: opts,
			Name:               args[0],
		})
		if err != nil {
			return reportNow(err)
		}

		fmt.Println(value)
		return nil
	},
}
