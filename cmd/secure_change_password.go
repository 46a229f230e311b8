package cmd

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	oldPassword string
	newPassword string
)

func init() {
	secureChangePasswordCmd.Flags().StringVar(&oldPassword, "old-password", "", "current vault password (prompted when omitted)")
	secureChangePasswordCmd.Flags().StringVar(&newPassword, "new-password", "", "new vault password (prompted when omitted)")
}

func resetSecureChangePasswordState() {
	oldPassword = ""
	newPassword = ""
}

var secureChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Re-encrypt the credential under a new password",
	Long: `Changes the vault password. The credential itself is not changed, so
anything already using it keeps working.

If the current password is wrong, the stored record is left untouched.

Examples:
  vaultrunner secure change-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure change-password command")

		current, err := resolvePassword(oldPassword, false, "Current password: ")
		if err != nil {
			return reportNow(err)
		}
		next, err := resolveNewPassword(newPassword, false, "New password: ")
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Changing password...")
		defer cleanup()

		result, err := workflows.ChangePassword(context.Background(), workflows.ChangePasswordOptions{
			Config:      cfg,
			OldPassword: current,
			NewPassword: next,
		})
		if err != nil {
			return report(spinner, err)
		}
		Logger.Infof("Password changed for key id %s", result.KeyID)

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Password changed\n" +
			ui.Info.Sprint("→") + " The credential is unchanged " + ui.Muted.Sprint("key id "+result.KeyID)
		return nil
	},
}
