package cmd

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	exportPassword      string
	exportPasswordStdin bool
	exportRaw           bool
)

func init() {
	secureExportCmd.Flags().StringVar(&exportPassword, "password", "", "vault password (prompted when omitted)")
	secureExportCmd.Flags().BoolVar(&exportPasswordStdin, "password-stdin", false, "read the vault password from stdin")
	secureExportCmd.Flags().BoolVar(&exportRaw, "raw", false, "print only the credential")
}

func resetSecureExportState() {
	exportPassword = ""
	exportPasswordStdin = false
	exportRaw = false
}

var secureExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Decrypt and print the vault credential",
	Long: `Decrypts the stored credential with your password and prints it.

Every attempt, including one with a wrong password, is recorded in the audit log.

Examples:
  vaultrunner secure export

  # Use the credential as a token in a script
  VAULT_TOKEN=$(pass show vault | vaultrunner secure export --password-stdin --raw)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure export command")

		fail := reportNow
		if exportRaw {
			// Keep stdout clean so command substitution never captures an error.
			fail = reportStderr
		}

		password, err := resolvePassword(exportPassword, exportPasswordStdin, "Vault password: ")
		if err != nil {
			return fail(err)
		}

		opts := workflows.ExportOptions{Config: cfg, Password: password}

		if exportRaw {
			result, err := workflows.Export(context.Background(), opts)
			if err != nil {
				return fail(err)
			}
			fmt.Println(result.Credential)
			return nil
		}

		spinner, cleanup := startSpinner("Decrypting credential...")
		defer cleanup()

		result, err := workflows.Export(context.Background(), opts)
		if err != nil {
			return report(spinner, err)
		}
		Logger.Infof("Credential decrypted for key id %s", result.KeyID)

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Credential decrypted " + ui.Muted.Sprint("key id "+result.KeyID) + "\n\n" +
			"  " + ui.Secret.Sprint(result.Credential)
		return nil
	},
}
