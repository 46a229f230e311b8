package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var secretsListCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List shared secret names",
	Args:  cobra.MaximumNArgs(1),
	Example: `  vaultrunner secrets list
  vaultrunner secrets list services`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets list command")

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		opts, err := secretStoreOptions()
		if err != nil {
			return reportNow(err)
		}

		names, err := workflows.ListSecrets(context.Background(), workflows.ListSecretsOptions{
			SecretStoreOptions: opts,
			Prefix:             prefix,
		})
		if err != nil {
			return reportNow(err)
		}

		if len(names) == 0 {
			fmt.Println(ui.Muted.Sprint("no secrets under " + cfg.SecretPath(prefix)))
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
