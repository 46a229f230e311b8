package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// Audit operation names.
const (
	OpInit           = "init"
	OpExport         = "export"
	OpChangePassword = "change-password"
	OpCert           = "cert"
	OpSecretPut      = "secret-put"
	OpSecretGet      = "secret-get"
	OpSecretDelete   = "secret-delete"
	OpBackup         = "backup"
	OpRestore        = "restore"
)

// Audit outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeWrongPassword = "wrong_password"
	OutcomeCorrupted     = "corrupted"
	OutcomeFailed        = "failed"
)

func openVault(cfg *configs.Config) (*vault.Vault, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration supplied", kerrors.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return vault.New(cfg.Vault.Dir), nil
}

// checkContext is called before PBKDF2 work, which cannot be interrupted.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("operation canceled: %w", err)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, kerrors.ErrDecryption):
		return OutcomeWrongPassword
	case errors.Is(err, kerrors.ErrFormat):
		return OutcomeCorrupted
	default:
		return OutcomeFailed
	}
}

// record writes an audit entry for op. Uninitialized vaults are not logged so
// that a failed command does not create the vault directory.
func record(cfg *configs.Config, entry audit.Entry, err error) {
	if cfg == nil || errors.Is(err, kerrors.ErrNotInitialized) || errors.Is(err, kerrors.ErrInvalidConfig) {
		return
	}
	entry.Outcome = outcomeOf(err)
	audit.Log(cfg.Vault.Dir, entry)
}
