package cmd

import (
	"github.com/PolarWolf314/vaultrunner/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	secretsPassword      string
	secretsPasswordStdin bool

	SecretsCmd = &cobra.Command{
		Use:   "secrets",
		Short: "Manage shared secrets in the secret store",
		Long: `Reads and writes shared secrets in a KV version 2 secret store.

Secrets are stored under the configured secret namespace (default "shared")
on the configured mount (default "secret"). The vault credential is used as
the access token unless VAULT_TOKEN is set, so the vault password is asked
for once per command.`,
		PersistentPreRunE: preRun,
	}
)

func init() {
	addVerbosityFlags(SecretsCmd)
	SecretsCmd.PersistentFlags().StringVar(&secretsPassword, "password", "", "vault password used to unlock the access token")
	SecretsCmd.PersistentFlags().BoolVar(&secretsPasswordStdin, "password-stdin", false, "read the vault password from stdin")

	SecretsCmd.AddCommand(secretsPutCmd)
	SecretsCmd.AddCommand(secretsGetCmd)
	SecretsCmd.AddCommand(secretsListCmd)
	SecretsCmd.AddCommand(secretsDeleteCmd)
	SecretsCmd.AddCommand(secretsBackupCmd)
	SecretsCmd.AddCommand(secretsRestoreCmd)
}

func resetSecretsState() {
	secretsPassword = ""
	secretsPasswordStdin = false
	resetSecretsBackupState()
	resetSecretsRestoreState()
}

// GetSecretsCmd returns the SecretsCmd for testing.
func GetSecretsCmd() *cobra.Command {
	return SecretsCmd
}

// secretStoreOptions collects the vault password unless the configuration
// already carries a token.
func secretStoreOptions() (workflows.SecretStoreOptions, error) {
	opts := workflows.SecretStoreOptions{Config: cfg}
	if cfg.SecretStore.Token != "" {
		Logger.Debugf("Using the configured secret store token")
		return opts, nil
	}

	password, err := resolvePassword(secretsPassword, secretsPasswordStdin, "Vault password: ")
	if err != nil {
		return opts, err
	}
	opts.Password = password
	return opts, nil
}
