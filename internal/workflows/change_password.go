package workflows

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

// ChangePasswordOptions configures the change-password workflow.
type ChangePasswordOptions struct {
	Config      *configs.Config
	OldPassword string
	NewPassword string
}

// ChangePasswordResult contains the outcome of a password change.
type ChangePasswordResult struct {
	KeyID     string
	RotatedAt string
}

// ChangePassword re-encrypts the credential under a new password with a fresh
// salt and IV. The credential itself does not change, so anything already
// using it keeps working.
//
// Returns ErrEmptyPassword if the new password is empty.
// Returns ErrNotInitialized if the vault has no record.
// Returns ErrDecryption if the old password is wrong; the record is untouched.
func ChangePassword(ctx context.Context, opts ChangePasswordOptions) (*ChangePasswordResult, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.NewPassword == "" {
		return nil, kerrors.ErrEmptyPassword
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	entry := audit.LogWithUser(OpChangePassword)

	if err := v.Rotate(opts.OldPassword, opts.NewPassword); err != nil {
		record(opts.Config, entry, err)
		return nil, err
	}

	result := &ChangePasswordResult{}
	if info, err := v.LoadMetadata(); err == nil && info != nil {
		result.KeyID = info.KeyID
		result.RotatedAt = info.RotatedAt
		entry.KeyID = info.KeyID
	}
	record(opts.Config, entry, nil)

	return result, nil
}
