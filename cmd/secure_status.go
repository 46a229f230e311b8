package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var statusJSON bool

func init() {
	secureStatusCmd.Flags().BoolVar(&statusJSON, "json", false, "output in JSON format")
}

func resetSecureStatusState() {
	statusJSON = false
}

// statusOutput is the --json form of the status command.
type statusOutput struct {
	VaultDir              string            `json:"vault_dir"`
	Initialized           bool              `json:"initialized"`
	RecordPath            string            `json:"record_path"`
	Version               string            `json:"version,omitempty"`
	CreatedAt             string            `json:"created_at,omitempty"`
	Metadata              map[string]string `json:"metadata,omitempty"`
	CertificatePath       string            `json:"certificate_path,omitempty"`
	CertificateCommonName string            `json:"certificate_common_name,omitempty"`
	CertificateNotAfter   string            `json:"certificate_not_after,omitempty"`
	CertificateExpired    bool              `json:"certificate_expired"`
	LastExport            *audit.Entry      `json:"last_export,omitempty"`
	LastPasswordChange    *audit.Entry      `json:"last_password_change,omitempty"`
	SecretStoreAddress    string            `json:"secret_store_address,omitempty"`
	SecretStoreConfigured bool              `json:"secret_store_configured"`
}

var secureStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault state without unlocking it",
	Long: `Shows whether the vault is initialized, the record's non-secret metadata,
the certificate's validity, and recent exports and password changes.

No password is required.

Examples:
  vaultrunner secure status
  vaultrunner secure status --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting secure status command")

		result, err := workflows.Status(context.Background(), workflows.StatusOptions{Config: cfg})
		if err != nil {
			return reportNow(err)
		}

		if statusJSON {
			return printStatusJSON(result)
		}
		printStatus(result)
		return nil
	},
}

func printStatusJSON(result *workflows.StatusResult) error {
	out := statusOutput{
		VaultDir:              result.VaultDir,
		Initialized:           result.Initialized,
		RecordPath:            result.RecordPath,
		CertificateExpired:    result.CertificateExpired,
		LastExport:            result.LastExport,
		LastPasswordChange:    result.LastPasswordChange,
		SecretStoreAddress:    result.SecretStoreAddress,
		SecretStoreConfigured: result.SecretStoreConfigured,
	}
	if result.Record != nil {
		out.Version = result.Record.Version
		out.CreatedAt = result.Record.CreatedAt
		out.Metadata = result.Record.Metadata
	}
	if result.Certificate != nil {
		out.CertificatePath = result.Certificate.CertificatePath
		out.CertificateCommonName = result.Certificate.CommonName
		out.CertificateNotAfter = result.Certificate.NotAfter.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printStatus(result *workflows.StatusResult) {
	if !result.Initialized {
		fmt.Println(ui.Warning.Sprint("⚠") + " Vault not initialized in " + ui.Path.Sprint(result.VaultDir))
		fmt.Println(ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("vaultrunner secure init") + " to create it")
	} else {
		record := result.Record
		fmt.Println(ui.Success.Sprint("✓") + " Vault initialized")
		fmt.Print(ui.Fields(
			ui.Field{Label: "Record", Value: ui.Path.Sprint(record.Path)},
			ui.Field{Label: "Version", Value: record.Version},
			ui.Field{Label: "Key ID", Value: record.KeyID},
			ui.Field{Label: "Initialized", Value: record.Initialized},
			ui.Field{Label: "Password changed", Value: record.RotatedAt},
		))
	}

	fmt.Println()
	if cert := result.Certificate; cert != nil {
		state := ui.Success.Sprint("valid")
		if result.CertificateExpired {
			state = ui.Error.Sprint("expired")
		}
		fmt.Println(ui.Success.Sprint("✓") + " Certificate " + state)
		fmt.Print(ui.Fields(
			ui.Field{Label: "Certificate", Value: ui.Path.Sprint(cert.CertificatePath)},
			ui.Field{Label: "Common name", Value: cert.CommonName},
			ui.Field{Label: "Expires", Value: cert.NotAfter.Format(time.RFC3339)},
		))
	} else {
		fmt.Println(ui.Warning.Sprint("⚠") + " No certificate issued")
	}

	fmt.Println()
	fmt.Print(ui.Fields(
		ui.Field{Label: "Last export", Value: describeEntry(result.LastExport)},
		ui.Field{Label: "Last password change", Value: describeEntry(result.LastPasswordChange)},
		ui.Field{Label: "Secret store", Value: result.SecretStoreAddress},
	))
}

func describeEntry(e *audit.Entry) string {
	if e == nil {
		return ""
	}
	s := e.Timestamp
	if e.User != "" {
		s += " by " + e.User
	}
	if e.Outcome != "" && e.Outcome != workflows.OutcomeOK {
		s += " " + ui.Warning.Sprint("("+e.Outcome+")")
	}
	return s
}
