package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/ui"
	"github.com/briandowns/spinner"
	"github.com/spf13/pflag"
)

// ErrReported is returned by commands that have already shown the failure to
// the user. The caller should exit non-zero without printing it again.
var ErrReported = errors.New("error already reported")

var (
	configPath string
	cfg        *configs.Config
)

// RegisterGlobalFlags adds flags shared by every command.
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&configPath, "config", "", "path to the config file (default "+configs.DefaultConfigFile+")")
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return configs.DefaultConfigFile
}

// loadConfig resolves configuration once per command invocation.
func loadConfig() error {
	path := resolvedConfigPath()
	Logger.Debugf("Loading configuration from %s", path)

	loaded, err := configs.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	Logger.Debugf("Vault directory: %s", cfg.Vault.Dir)
	return nil
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do not need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Cleared so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Printed to stdout so tests can capture it.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// formatError turns a workflow error into the message shown to the user.
func formatError(err error) string {
	cross := ui.Error.Sprint("✗")
	arrow := ui.Info.Sprint("→")

	switch {
	case errors.Is(err, kerrors.ErrNotInitialized):
		return cross + " The vault has not been initialized\n" +
			arrow + " Run " + ui.Code.Sprint("vaultrunner secure init") + " first"

	case errors.Is(err, kerrors.ErrAlreadyInitialized):
		return cross + " The vault is already initialized\n" +
			arrow + " Use " + ui.Flag.Sprint("--force") + " to replace the credential, or " +
			ui.Code.Sprint("vaultrunner secure change-password") + " to change only the password"

	case errors.Is(err, kerrors.ErrDecryption):
		return cross + " Incorrect password"

	case errors.Is(err, kerrors.ErrFormat):
		return cross + " The encrypted data is corrupted or unsupported\n\n" +
			ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrPasswordMismatch):
		return cross + " Passwords do not match"

	case errors.Is(err, kerrors.ErrEmptyPassword):
		return cross + " Password must not be empty"

	case errors.Is(err, kerrors.ErrCertificateNotFound):
		return cross + " No TLS certificate has been issued\n" +
			arrow + " Run " + ui.Code.Sprint("vaultrunner secure cert") + " or " + ui.Code.Sprint("vaultrunner secure init")

	case errors.Is(err, kerrors.ErrSecretNotFound):
		return cross + " Secret not found\n\n" + ui.Error.Sprint("Error: ") + err.Error()

	case errors.Is(err, kerrors.ErrEnvironment):
		return cross + " " + err.Error() + "\n" +
			arrow + " Pipe the password with " + ui.Flag.Sprint("--password-stdin")

	case errors.Is(err, kerrors.ErrInvalidConfig):
		return cross + " Invalid configuration\n\n" + ui.Error.Sprint("Error: ") + err.Error()

	default:
		return cross + " " + err.Error()
	}
}

// report shows err through the spinner's final message and returns ErrReported.
func report(s *spinner.Spinner, err error) error {
	Logger.Debugf("Command failed: %v", err)
	s.FinalMSG = formatError(err)
	return ErrReported
}

// reportNow prints err immediately, for failures before a spinner is running.
func reportNow(err error) error {
	Logger.Debugf("Command failed: %v", err)
	fmt.Println(formatError(err))
	return ErrReported
}

// reportStderr is reportNow for commands whose stdout is meant for scripts.
func reportStderr(err error) error {
	Logger.Debugf("Command failed: %v", err)
	fmt.Fprintln(os.Stderr, formatError(err))
	return ErrReported
}
