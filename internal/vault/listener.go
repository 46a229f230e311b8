package vault

import (
	"encoding/json"
	"fmt"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

// Defaults applied by ListenerConfig when ListenerOptions leaves a field empty.
const (
	DefaultListenAddress = "0.0.0.0:8200"
	DefaultStoragePath   = "/vault/data"
)

// ServerConfig is a secret-store server configuration that serves TLS with
// the vault's certificate bundle. It marshals to the server's JSON config form.
type ServerConfig struct {
	Listener ListenerBlock `json:"listener"`
	Storage  StorageBlock  `json:"storage"`
	UI       bool          `json:"ui"`
}

// ListenerBlock holds the server's listener stanza.
type ListenerBlock struct {
	TCP TCPListener `json:"tcp"`
}

// TCPListener serves TLS from the vault's certificate bundle.
type TCPListener struct {
	Address     string `json:"address"`
	TLSCertFile string `json:"tls_cert_file"`
	TLSKeyFile  string `json:"tls_key_file"`
}

// StorageBlock selects the server's storage backend.
type StorageBlock struct {
	File FileStorage `json:"file"`
}

// FileStorage keeps server data under Path.
type FileStorage struct {
	Path string `json:"path"`
}

// ListenerOptions overrides the defaults used by ListenerConfig.
type ListenerOptions struct {
	Address     string
	StoragePath string
	DisableUI   bool
}

// ListenerConfig builds a server configuration pointing at the issued bundle.
// Returns ErrCertificateNotFound if the certificate or key is missing.
func (v *Vault) ListenerConfig(opts ListenerOptions) (*ServerConfig, error) {
	ok, err := v.HasCertificate()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, kerrors.ErrCertificateNotFound
	}

	address := opts.Address
	if address == "" {
		address = DefaultListenAddress
	}
	storagePath := opts.StoragePath
	if storagePath == "" {
		storagePath = DefaultStoragePath
	}

	return &ServerConfig{
		Listener: ListenerBlock{TCP: TCPListener{
			Address:     address,
			TLSCertFile: v.CertificatePath(),
			TLSKeyFile:  v.PrivateKeyPath(),
		}},
		Storage: StorageBlock{File: FileStorage{Path: storagePath}},
		UI:      !opts.DisableUI,
	}, nil
}

// JSON renders the configuration with two-space indentation.
func (c *ServerConfig) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding server config: %w", err)
	}
	return data, nil
}
