package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	certCommonName string
	certForce      bool
)

func init() {
	secureCertCmd.Flags().StringVar(&certCommonName, "common-name", "", "certificate common name (default from config)")
	secureCertCmd.Flags().BoolVarP(&certForce, "force", "f", false, "skip confirmation when replacing a certificate")
}

func resetSecureCertState() {
	certCommonName = ""
	certForce = false
}

// confirmReissue asks before an existing certificate is replaced.
func confirmReissue(s *spinner.Spinner) bool {
	s.Stop()

	fmt.Printf("\n%s A certificate already exists and will be replaced.\n", ui.Warning.Sprint("Warning:"))
	fmt.Println("  Clients pinning the current certificate must be updated.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Do you want to continue? [y/N]: ")
	response, err := reader.ReadString('\n')
	if err != nil {
		Logger.Errorf("Failed to read response: %v", err)
		s.Restart()
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))

	s.Restart()
	return response == "y" || response == "yes"
}

var secureCertCmd = &cobra.Command{
	Use:   "cert",
	Short: "Issue a new self-signed TLS certificate",
	Long: `Issues a self-signed RSA 2048 certificate valid for 365 days, with
localhost, 127.0.0.1 and ::1 as subject alternative names. The encrypted
credential is not touched, so no password is needed.

Examples:
  vaultrunner secure cert
  vaultrunner secure cert --common-name vault.internal --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure cert command")

		spinner, cleanup := startSpinner("Issuing certificate...")
		defer cleanup()

		exists, err := vault.New(cfg.Vault.Dir).HasCertificate()
		if err != nil {
			return report(spinner, err)
		}
		if exists && !certForce && !confirmReissue(spinner) {
			spinner.FinalMSG = ui.Warning.Sprint("⚠") + " Certificate reissue cancelled."
			return nil
		}

		bundle, err := workflows.IssueCertificate(context.Background(), workflows.IssueCertificateOptions{
			Config:     cfg,
			CommonName: certCommonName,
		})
		if err != nil {
			return report(spinner, err)
		}
		Logger.Infof("Certificate issued for %s", bundle.CommonName)

		spinner.FinalMSG = ui.Success.Sprint("✓") + " Certificate issued for " + ui.Highlight.Sprint(bundle.CommonName) + "\n\n" +
			ui.Fields(
				ui.Field{Label: "Certificate", Value: ui.Path.Sprint(bundle.CertificatePath)},
				ui.Field{Label: "Private key", Value: ui.Path.Sprint(bundle.PrivateKeyPath)},
				ui.Field{Label: "Expires", Value: bundle.NotAfter.Format(time.RFC3339)},
			)
		return nil
	},
}
