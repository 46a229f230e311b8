package workflows

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
)

// ExportOptions configures the export workflow.
type ExportOptions struct {
	Config   *configs.Config
	Password string
}

// ExportResult contains the decrypted credential.
type ExportResult struct {
	Credential string
	KeyID      string
}

// Export decrypts the stored credential. Every attempt, including one with a
// wrong password, is recorded in the audit log.
//
// Returns ErrNotInitialized if the vault has no record.
// Returns ErrFormat if the record is corrupted.
// Returns ErrDecryption if the password is wrong.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(OpExport)

	credential, err := v.Export(opts.Password)
	if err != nil {
		record(opts.Config, entry, err)
		return nil, err
	}

	result := &ExportResult{Credential: credential}
	if info, err := v.LoadMetadata(); err == nil && info != nil {
		result.KeyID = info.KeyID
		entry.KeyID = info.KeyID
	}
	record(opts.Config, entry, nil)

	return result, nil
}
