package cmd

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	initPassword      string
	initPasswordStdin bool
	initForce         bool
	initExportKey     bool
	initCommonName    string
	initReissueCert   bool
)

func init() {
	secureInitCmd.Flags().StringVar(&initPassword, "password", "", "vault password (prompted when omitted)")
	secureInitCmd.Flags().BoolVar(&initPasswordStdin, "password-stdin", false, "read the vault password from stdin")
	secureInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "replace an existing credential")
	secureInitCmd.Flags().BoolVar(&initExportKey, "export-key", false, "print the generated credential")
	secureInitCmd.Flags().StringVar(&initCommonName, "common-name", "", "certificate common name (default from config)")
	secureInitCmd.Flags().BoolVar(&initReissueCert, "reissue-cert", false, "issue a new certificate even if one exists")
}

func resetSecureInitState() {
	initPassword = ""
	initPasswordStdin = false
	initForce = false
	initExportKey = false
	initCommonName = ""
	initReissueCert = false
}

var secureInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the vault with a new credential and TLS certificate",
	Long: `Generates a random 256-bit credential, encrypts it under your password and
stores it in the vault directory. A self-signed TLS certificate valid for one
year is issued for localhost unless one already exists.

The credential is only shown when --export-key is given. It can be recovered
later with 'vaultrunner secure export'.

Examples:
  # Initialize interactively
  vaultrunner secure init

  # Initialize and show the credential once
  vaultrunner secure init --export-key

  # Non-interactive, password piped from a secrets manager
  pass show vault | vaultrunner secure init --password-stdin

  # Replace an existing credential and certificate
  vaultrunner secure init --force --reissue-cert --common-name vault.internal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure init command")

		password, err := resolveNewPassword(initPassword, initPasswordStdin, "Vault password: ")
		if err != nil {
			return reportNow(err)
		}

		spinner, cleanup := startSpinner("Initializing vault...")
		defer cleanup()

		result, err := workflows.Init(context.Background(), workflows.InitOptions{
			Config:             cfg,
			Password:           password,
			Force:              initForce,
			CommonName:         initCommonName,
			ReissueCertificate: initReissueCert,
		})
		if err != nil {
			return report(spinner, err)
		}
		Logger.Infof("Vault initialized with key id %s", result.KeyID)

		finalMessage := ui.Success.Sprint("✓") + " Vault initialized\n\n" +
			ui.Fields(
				ui.Field{Label: "Record", Value: ui.Path.Sprint(result.RecordPath)},
				ui.Field{Label: "Key ID", Value: result.KeyID},
				ui.Field{Label: "Certificate", Value: ui.Path.Sprint(result.CertificatePath)},
				ui.Field{Label: "Private key", Value: ui.Path.Sprint(result.PrivateKeyPath)},
			)

		if result.CertificateIssued {
			finalMessage += ui.Info.Sprint("→") + " Issued a new certificate for " + ui.Highlight.Sprint(result.CommonName) + "\n"
		} else {
			finalMessage += ui.Info.Sprint("→") + " Kept the existing certificate " + ui.Muted.Sprint("use --reissue-cert to replace it") + "\n"
		}

		if initExportKey {
			finalMessage += "\n" + ui.Warning.Sprint("⚠") + " Store this credential safely. It will not be shown again:\n\n" +
				"  " + ui.Secret.Sprint(result.Credential) + "\n"
		} else {
			finalMessage += ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vaultrunner secure export") + " to retrieve the credential\n"
		}

		spinner.FinalMSG = finalMessage
		return nil
	},
}
