package workflows

import (
	"context"
	"errors"
	"time"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Config *configs.Config

	// Now is used to judge certificate expiry. Defaults to time.Now.
	Now func() time.Time
}

// StatusResult describes the vault without unlocking it.
type StatusResult struct {
	VaultDir    string
	RecordPath  string
	Initialized bool

	// Record is nil when the vault is not initialized.
	Record *vault.RecordInfo

	// Certificate is nil when no bundle has been issued.
	Certificate        *vault.CertificateBundle
	CertificateExpired bool

	LastExport         *audit.Entry
	LastPasswordChange *audit.Entry

	SecretStoreAddress    string
	SecretStoreConfigured bool
}

// Status reports the state of the vault. No password is required.
//
// Returns ErrFormat if the record exists but cannot be parsed.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	info, err := v.LoadMetadata()
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		VaultDir:           v.Dir,
		RecordPath:         v.RecordPath(),
		Initialized:        info != nil,
		Record:             info,
		SecretStoreAddress: opts.Config.SecretStore.Address,
		// A token may be supplied explicitly or unlocked from the vault.
		SecretStoreConfigured: opts.Config.SecretStore.Address != "" &&
			(opts.Config.SecretStore.Token != "" || info != nil),
	}

	cert, err := v.LoadCertificate()
	switch {
	case err == nil:
		result.Certificate = cert
		result.CertificateExpired = now().After(cert.NotAfter)
	case !errors.Is(err, kerrors.ErrCertificateNotFound):
		return nil, err
	}

	entries, err := audit.ReadEntries(v.Dir)
	if err == nil {
		result.LastExport = audit.Last(entries, OpExport)
		result.LastPasswordChange = audit.Last(entries, OpChangePassword)
	}

	return result, nil
}
