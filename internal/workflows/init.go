package workflows

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	Config *configs.Config

	// Password protects the generated credential. It must not be empty.
	Password string

	// Force replaces an existing record. The existing certificate is kept
	// unless ReissueCertificate is also set.
	Force bool

	// CommonName overrides the configured certificate common name.
	CommonName string

	// ReissueCertificate issues a new certificate even if one exists.
	ReissueCertificate bool
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	// Credential is the plaintext credential. It is returned once and is
	// only recoverable afterwards through Export.
	Credential string

	KeyID             string
	RecordPath        string
	CertificatePath   string
	PrivateKeyPath    string
	CommonName        string
	CertificateIssued bool
}

// Init sets up the vault: it generates a random credential, issues the TLS
// bundle if none exists, and stores the credential encrypted under the password.
//
// Returns ErrEmptyPassword if no password is supplied.
// Returns ErrAlreadyInitialized if a record exists and Force is not set.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.Password == "" {
		return nil, kerrors.ErrEmptyPassword
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	commonName := opts.CommonName
	if commonName == "" {
		commonName = opts.Config.Vault.CommonName
	}

	result, err := v.Initialize(opts.Password, vault.InitOptions{
		Overwrite:          opts.Force,
		CommonName:         commonName,
		ReissueCertificate: opts.ReissueCertificate,
	})
	if err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(OpInit)
	entry.KeyID = result.KeyID
	entry.CommonName = result.CommonName
	record(opts.Config, entry, nil)

	return &InitResult{
		Credential:        result.Credential,
		KeyID:             result.KeyID,
		RecordPath:        v.RecordPath(),
		CertificatePath:   result.CertificatePath,
		PrivateKeyPath:    result.PrivateKeyPath,
		CommonName:        result.CommonName,
		CertificateIssued: result.CertificateNew,
	}, nil
}
