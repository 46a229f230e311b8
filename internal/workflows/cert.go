package workflows

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// IssueCertificateOptions configures the cert workflow.
type IssueCertificateOptions struct {
	Config *configs.Config

	// CommonName overrides the configured certificate common name.
	CommonName string
}

// IssueCertificate issues a new self-signed bundle, replacing any existing
// one. The encrypted record is not touched, so no password is needed.
func IssueCertificate(ctx context.Context, opts IssueCertificateOptions) (*vault.CertificateBundle, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	commonName := opts.CommonName
	if commonName == "" {
		commonName = opts.Config.Vault.CommonName
	}

	entry := audit.LogWithUser(OpCert)
	entry.CommonName = commonName

	bundle, err := v.IssueCertificate(commonName)
	record(opts.Config, entry, err)
	if err != nil {
		return nil, err
	}
	return bundle, nil
}
