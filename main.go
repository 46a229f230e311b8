package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/vaultrunner/cmd"
	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vaultrunner",
	Short: "VaultRunner - a password-protected credential vault with a local TLS listener.",
	Long: `VaultRunner keeps a randomly generated credential encrypted under a password,
issues a self-signed certificate for a local secret store listener, and reads
and writes shared secrets using the unlocked credential.

Usage:
  vaultrunner <command> [flags]

Available Commands:
  secure     Manage the vault credential and certificate
  secrets    Manage shared secrets in the secret store
  config     Manage vaultrunner configuration

Run 'vaultrunner help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, args []string) {
		banner := figure.NewColorFigure("VaultRunner", "small", "green", true)
		banner.Print()
		fmt.Println()
		fmt.Println("Run 'vaultrunner --help' to see available commands.")
	},
}

func init() {
	cmd.RegisterGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(cmd.SecureCmd)
	rootCmd.AddCommand(cmd.SecretsCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cmd.ErrReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
