package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	restorePassword string
	restoreDryRun   bool
)

func init() {
	secretsRestoreCmd.Flags().StringVar(&restorePassword, "backup-password", "", "password that decrypts the archive (prompted when omitted)")
	secretsRestoreCmd.Flags().BoolVar(&restoreDryRun, "dry-run", false, "list what would be restored without writing anything")
}

func resetSecretsRestoreState() {
	restorePassword = ""
	restoreDryRun = false
}

var secretsRestoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Write the secrets in an encrypted archive back to the secret store",
	Long: `Decrypts an archive created by 'secrets backup' and writes each secret back
to its original path, overwriting current values.

With --dry-run the archive is only decrypted and listed; the secret store is
not contacted and no vault password is needed.`,
	Example: `  vaultrunner secrets restore .vault/backups/vault_backup_20260314_092653.enc --dry-run
  vaultrunner secrets restore nightly.enc`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets restore command")

		opts := workflows.SecretStoreOptions{Config: cfg}
		if !restoreDryRun {
			var err error
			if opts, err = secretStoreOptions(); err != nil {
				return reportNow(err)
			}
		}

		password, err := resolvePassword(restorePassword, false, "Backup password: ")
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Restoring secrets...")
		defer cleanup()

		result, err := workflows.Restore(context.Background(), workflows.RestoreOptions{
			SecretStoreOptions: opts,
			BackupPassword:     password,
			Path:               args[0],
			DryRun:             restoreDryRun,
		})
		if err != nil {
			if result != nil && result.Restored > 0 {
				Logger.Warnf("%d secrets were restored before the failure", result.Restored)
			}
			return report(spinner, err)
		}

		finalMessage := ui.Fields(
			ui.Field{Label: "Archive", Value: ui.Path.Sprint(args[0])},
			ui.Field{Label: "Created", Value: result.Metadata.CreatedAt},
			ui.Field{Label: "Namespace", Value: result.Metadata.Namespace},
			ui.Field{Label: "Secrets", Value: strconv.Itoa(len(result.Paths))},
		)

		if restoreDryRun {
			finalMessage += "\n" + ui.Info.Sprint("→") + " Secrets that would be restored:\n"
			for _, path := range result.Paths {
				finalMessage += "  • " + path + "\n"
			}
			finalMessage += "\n" + ui.Muted.Sprint("dry run, nothing was written")
		} else {
			finalMessage = ui.Success.Sprint("✓") + fmt.Sprintf(" Restored %d secrets\n\n", result.Restored) + finalMessage
		}

		spinner.FinalMSG = finalMessage
		return nil
	},
}
