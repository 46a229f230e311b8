package workflows

import (
	"context"

	"github.com/PolarWolf314/vaultrunner/internal/configs"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
)

// ListenerConfigOptions configures the listener-config workflow.
type ListenerConfigOptions struct {
	Config *configs.Config
}

// ListenerConfig builds a server configuration whose TLS listener uses the
// vault's certificate bundle.
//
// Returns ErrCertificateNotFound if no bundle has been issued.
func ListenerConfig(ctx context.Context, opts ListenerConfigOptions) (*vault.ServerConfig, error) {
	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	settings := opts.Config.Vault
	return v.ListenerConfig(vault.ListenerOptions{
		Address:     settings.ListenAddress,
		StoragePath: settings.StoragePath,
		DisableUI:   settings.DisableUI,
	})
}
