package configs

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/PolarWolf314/vaultrunner/internal/vault"
	"github.com/joho/godotenv"
)

const (
	// DefaultConfigFile is looked up in the working directory.
	DefaultConfigFile = ".vaultrunner.toml"

	DefaultVaultDir        = ".vault"
	DefaultCommonName      = vault.DefaultCommonName
	DefaultListenAddress   = vault.DefaultListenAddress
	DefaultStoragePath     = vault.DefaultStoragePath
	DefaultMount           = "secret"
	DefaultSecretNamespace = "shared"
)

// Environment variables read once by Load. They are never written back.
const (
	EnvVaultDir        = "VAULTRUNNER_VAULT_DIR"
	EnvCommonName      = "VAULTRUNNER_COMMON_NAME"
	EnvSecretNamespace = "VAULTRUNNER_SECRET_NAMESPACE"
	EnvEnvFile         = "VAULTRUNNER_ENV_FILE"
	EnvAddress         = "VAULT_ADDR"
	EnvToken           = "VAULT_TOKEN"
	EnvNamespace       = "VAULT_NAMESPACE"
)

type Config struct {
	Vault       VaultSettings       `toml:"vault"`
	SecretStore SecretStoreSettings `toml:"secret_store"`
}

type VaultSettings struct {
	Dir           string `toml:"dir"`
	CommonName    string `toml:"common_name"`
	ListenAddress string `toml:"listen_address"`
	StoragePath   string `toml:"storage_path"`
	DisableUI     bool   `toml:"disable_ui"`
}

type SecretStoreSettings struct {
	Address         string `toml:"address"`
	Namespace       string `toml:"namespace,omitempty"`
	Mount           string `toml:"mount"`
	SecretNamespace string `toml:"secret_namespace"`
	EnvFile         string `toml:"env_file,omitempty"`

	// Token only ever comes from the environment or the env file.
	Token string `toml:"-"`
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Vault: VaultSettings{
			Dir:           DefaultVaultDir,
			CommonName:    DefaultCommonName,
			ListenAddress: DefaultListenAddress,
			StoragePath:   DefaultStoragePath,
		},
		SecretStore: SecretStoreSettings{
			Mount:           DefaultMount,
			SecretNamespace: DefaultSecretNamespace,
		},
	}
}

// Load reads the config file at path (missing is fine) and applies
// environment overrides from the process environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv resolves configuration in increasing precedence: defaults,
// the TOML file, the dotenv file named by env_file, then lookup.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := LoadTOML(path, cfg); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: reading %s: %w", kerrors.ErrIO, path, err)
		}
	}

	envFile := cfg.SecretStore.EnvFile
	if v, ok := lookup(EnvEnvFile); ok && v != "" {
		envFile = v
	}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("%w: env file %s: %v", kerrors.ErrInvalidConfig, envFile, err)
		}
		cfg.applyOverrides(func(key string) (string, bool) {
			v, ok := values[key]
			return v, ok
		})
	}

	cfg.applyOverrides(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyOverrides(lookup LookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvVaultDir, &c.Vault.Dir)
	set(EnvCommonName, &c.Vault.CommonName)
	set(EnvSecretNamespace, &c.SecretStore.SecretNamespace)
	set(EnvAddress, &c.SecretStore.Address)
	set(EnvToken, &c.SecretStore.Token)
	set(EnvNamespace, &c.SecretStore.Namespace)
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Vault.Dir) == "" {
		return fmt.Errorf("%w: vault.dir must not be empty", kerrors.ErrInvalidConfig)
	}
	if c.SecretStore.Address != "" {
		u, err := url.Parse(c.SecretStore.Address)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: secret_store.address %q must be an http(s) URL", kerrors.ErrInvalidConfig, c.SecretStore.Address)
		}
	}
	if m := strings.Trim(c.SecretStore.Mount, "/"); m == "" || strings.Contains(m, "/") {
		return fmt.Errorf("%w: secret_store.mount %q must be a single path segment", kerrors.ErrInvalidConfig, c.SecretStore.Mount)
	}
	if strings.Contains(c.SecretStore.SecretNamespace, "..") {
		return fmt.Errorf("%w: secret_store.secret_namespace must not contain '..'", kerrors.ErrInvalidConfig)
	}
	return nil
}

// SecretPath places name under the configured secret namespace.
func (c *Config) SecretPath(name string) string {
	return path.Join(c.SecretStore.SecretNamespace, name)
}

// IsSecretStoreConfigured reports whether an address and token are both known.
func (c *Config) IsSecretStoreConfigured() bool {
	return c.SecretStore.Address != "" && c.SecretStore.Token != ""
}

// Save writes cfg to path as TOML. The token is never written.
func Save(path string, cfg *Config) error {
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("%w: saving config to %s: %w", kerrors.ErrIO, path, err)
	}
	return nil
}
