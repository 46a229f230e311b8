package workflows

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PolarWolf314/vaultrunner/internal/audit"
	"github.com/PolarWolf314/vaultrunner/internal/configs"
	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/secretstore"
)

// SecretStoreOptions identifies the secret store and how to authenticate.
type SecretStoreOptions struct {
	Config *configs.Config

	// Password unlocks the vault credential, which is then used as the
	// access token. Ignored when the configuration carries a token.
	Password string

	// Store replaces the configured HTTP client.
	Store secretstore.Store

	// HTTPClient is passed to the HTTP client when Store is nil.
	HTTPClient *http.Client
}

// OpenSecretStore returns a client for the configured secret store.
//
// The access token is the configured token if present, otherwise the
// credential unlocked from the vault with Password.
//
// Returns ErrInvalidConfig if no secret store address is configured.
// Returns ErrNotInitialized or ErrDecryption if the credential cannot be unlocked.
func OpenSecretStore(ctx context.Context, opts SecretStoreOptions) (secretstore.Store, error) {
	if opts.Store != nil {
		return opts.Store, nil
	}

	v, err := openVault(opts.Config)
	if err != nil {
		return nil, err
	}
	settings := opts.Config.SecretStore
	if settings.Address == "" {
		return nil, fmt.Errorf("%w: secret_store.address is not set (or %s)", kerrors.ErrInvalidConfig, configs.EnvAddress)
	}

	token := settings.Token
	if token == "" {
		if err := checkContext(ctx); err != nil {
			return nil, err
		}
		token, err = v.Export(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("unlocking secret store token: %w", err)
		}
	}

	cfg := secretstore.ClientConfig{
		Address:    settings.Address,
		Token:      token,
		Namespace:  settings.Namespace,
		Mount:      settings.Mount,
		HTTPClient: opts.HTTPClient,
	}

	// Trust the vault's own certificate when talking TLS to it.
	if u, err := url.Parse(settings.Address); err == nil && u.Scheme == "https" {
		if ok, _ := v.HasCertificate(); ok {
			cfg.CACertFile = v.CertificatePath()
		}
	}

	return secretstore.NewHTTPClient(cfg)
}

// PutSecretOptions configures the secret put workflow.
type PutSecretOptions struct {
	SecretStoreOptions
	Name  string
	Value string
}

// PutSecret stores Value under Name in the configured secret namespace and
// returns the full secret path.
func PutSecret(ctx context.Context, opts PutSecretOptions) (string, error) {
	path, store, err := prepareSecret(ctx, opts.SecretStoreOptions, opts.Name)
	if err != nil {
		return "", err
	}

	entry := audit.LogWithUser(OpSecretPut)
	entry.Path = path

	err = store.Put(ctx, path, opts.Value)
	record(opts.Config, entry, err)
	if err != nil {
		return "", err
	}
	return path, nil
}

// GetSecretOptions configures the secret get workflow.
type GetSecretOptions struct {
	SecretStoreOptions
	Name string
}

// GetSecret returns the value stored under Name.
//
// Returns ErrSecretNotFound if nothing is stored there.
func GetSecret(ctx context.Context, opts GetSecretOptions) (string, error) {
	path, store, err := prepareSecret(ctx, opts.SecretStoreOptions, opts.Name)
	if err != nil {
		return "", err
	}

	entry := audit.LogWithUser(OpSecretGet)
	entry.Path = path

	value, err := store.Get(ctx, path)
	record(opts.Config, entry, err)
	if err != nil {
		return "", err
	}
	return value, nil
}

// ListSecretsOptions configures the secret list workflow.
type ListSecretsOptions struct {
	SecretStoreOptions

	// Prefix narrows the listing to a folder inside the secret namespace.
	Prefix string
}

// ListSecrets returns the sorted names under Prefix. Folders end in "/".
func ListSecrets(ctx context.Context, opts ListSecretsOptions) ([]string, error) {
	if opts.Prefix != "" {
		if err := validateSecretName(opts.Prefix); err != nil {
			return nil, err
		}
	}

	store, err := OpenSecretStore(ctx, opts.SecretStoreOptions)
	if err != nil {
		return nil, err
	}

	names, err := store.List(ctx, opts.Config.SecretPath(opts.Prefix))
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSecretOptions configures the secret delete workflow.
type DeleteSecretOptions struct {
	SecretStoreOptions
	Name string
}

// DeleteSecret removes Name and all of its versions and returns the full path.
func DeleteSecret(ctx context.Context, opts DeleteSecretOptions) (string, error) {
	path, store, err := prepareSecret(ctx, opts.SecretStoreOptions, opts.Name)
	if err != nil {
		return "", err
	}

	entry := audit.LogWithUser(OpSecretDelete)
	entry.Path = path

	err = store.Delete(ctx, path)
	record(opts.Config, entry, err)
	if err != nil {
		return "", err
	}
	return path, nil
}

func prepareSecret(ctx context.Context, opts SecretStoreOptions, name string) (string, secretstore.Store, error) {
	if opts.Config == nil {
		return "", nil, fmt.Errorf("%w: no configuration supplied", kerrors.ErrInvalidConfig)
	}
	if err := validateSecretName(name); err != nil {
		return "", nil, err
	}

	store, err := OpenSecretStore(ctx, opts)
	if err != nil {
		return "", nil, err
	}
	return opts.Config.SecretPath(name), store, nil
}

// validateSecretName rejects names that would escape the secret namespace.
func validateSecretName(name string) error {
	trimmed := strings.Trim(name, "/")
	if trimmed == "" {
		return fmt.Errorf("%w: secret name must not be empty", kerrors.ErrInvalidConfig)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "." || segment == ".." {
			return fmt.Errorf("%w: secret name %q must not contain relative segments", kerrors.ErrInvalidConfig, name)
		}
	}
	return nil
}
