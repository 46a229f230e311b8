package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	backupOutput    string
	backupNamespace string
	backupPassword  string
)

func init() {
	secretsBackupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "archive path (default <vault dir>/backups/vault_backup_<timestamp>.enc)")
	secretsBackupCmd.Flags().StringVarP(&backupNamespace, "namespace", "n", "", "secret store folder to back up (default the configured secret namespace)")
	secretsBackupCmd.Flags().StringVar(&backupPassword, "backup-password", "", "password that encrypts the archive (prompted when omitted)")
}

func resetSecretsBackupState() {
	backupOutput = ""
	backupNamespace = ""
	backupPassword = ""
}

var secretsBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write every shared secret to an encrypted archive",
	Long: `Collects every secret under the namespace, including nested folders, and
writes them to a single archive encrypted with a backup password.

The archive uses the same encryption as the vault record. Losing the backup
password makes the archive unrecoverable.`,
	Example: `  vaultrunner secrets backup
  vaultrunner secrets backup -o nightly.enc --namespace services`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secrets backup command")

		opts, err := secretStoreOptions()
		if err != nil {
			return reportNow(err)
		}

		password, err := resolveNewPassword(backupPassword, false, "Backup password: ")
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Backing up secrets...")
		defer cleanup()

		result, err := workflows.Backup(context.Background(), workflows.BackupOptions{
			SecretStoreOptions: opts,
			BackupPassword:     password,
			Output:             backupOutput,
			Namespace:          backupNamespace,
		})
		if err != nil {
			return report(spinner, err)
		}
		Logger.Infof("Wrote %d secrets to %s", result.SecretCount, result.Path)

		spinner.FinalMSG = ui.Success.Sprint("✓") + fmt.Sprintf(" Backed up %d secrets from ", result.SecretCount) +
			ui.Highlight.Sprint(result.Namespace) + "\n\n" +
			ui.Fields(ui.Field{Label: "Archive", Value: ui.Path.Sprint(result.Path)})
		return nil
	},
}
