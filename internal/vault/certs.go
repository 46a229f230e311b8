package vault

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

const (
	// CertificateFile and PrivateKeyFile are the fixed bundle names under certs/.
	CertificateFile = "vault.crt"
	PrivateKeyFile  = "vault.key"

	// DefaultCommonName is used when no common name is supplied.
	DefaultCommonName = "localhost"

	// CertificateValidity is fixed at issuance; certificates are never renewed in place.
	CertificateValidity = 365 * 24 * time.Hour

	certificateKeyBits = 2048
	organization       = "VaultRunner"
)

// CertificateBundle locates an issued certificate and its private key.
type CertificateBundle struct {
	CertificatePath string
	PrivateKeyPath  string
	CommonName      string
	NotBefore       time.Time
	NotAfter        time.Time
}

// CertificatePath returns where the bundle certificate lives, whether or not it exists.
func (v *Vault) CertificatePath() string {
	return filepath.Join(v.CertsDir, CertificateFile)
}

// PrivateKeyPath returns where the bundle private key lives, whether or not it exists.
func (v *Vault) PrivateKeyPath() string {
	return filepath.Join(v.CertsDir, PrivateKeyFile)
}

// HasCertificate reports whether both bundle files are present.
func (v *Vault) HasCertificate() (bool, error) {
	for _, path := range []string{v.CertificatePath(), v.PrivateKeyPath()} {
		ok, err := fileExists(path)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// LoadCertificate reads the issued certificate and reports its validity window.
// Returns ErrCertificateNotFound if the bundle is incomplete.
func (v *Vault) LoadCertificate() (*CertificateBundle, error) {
	ok, err := v.HasCertificate()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, kerrors.ErrCertificateNotFound
	}

	data, err := os.ReadFile(v.CertificatePath())
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", kerrors.ErrIO, v.CertificatePath(), err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("%w: %s is not a PEM certificate", kerrors.ErrFormat, v.CertificatePath())
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrFormat, v.CertificatePath(), err)
	}

	return &CertificateBundle{
		CertificatePath: v.CertificatePath(),
		PrivateKeyPath:  v.PrivateKeyPath(),
		CommonName:      cert.Subject.CommonName,
		NotBefore:       cert.NotBefore,
		NotAfter:        cert.NotAfter,
	}, nil
}

// IssueCertificate generates a self-signed certificate for a local TLS
// listener and writes it, with its unencrypted PKCS#8 key, under certs/.
// Existing bundle files are overwritten.
func (v *Vault) IssueCertificate(commonName string) (*CertificateBundle, error) {
	if commonName == "" {
		commonName = DefaultCommonName
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, certificateKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generating serial number: %w", err)
	}

	// x509 encodes times at second precision.
	notBefore := v.now().UTC().Truncate(time.Second)
	notAfter := notBefore.Add(CertificateValidity)

	dnsNames := []string{commonName}
	if commonName != DefaultCommonName {
		dnsNames = append(dnsNames, DefaultCommonName)
	}

	name := pkix.Name{
		Organization: []string{organization},
		CommonName:   commonName,
	}
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               name,
		Issuer:                name,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("creating certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("marshaling private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})

	bundle := &CertificateBundle{
		CertificatePath: v.CertificatePath(),
		PrivateKeyPath:  v.PrivateKeyPath(),
		CommonName:      commonName,
		NotBefore:       notBefore,
		NotAfter:        notAfter,
	}

	// The key goes first: a failed key write must not leave a new
	// certificate next to the old key.
	if err := writeBytesAtomic(bundle.PrivateKeyPath, keyPEM, 0600); err != nil {
		return nil, err
	}
	// #nosec G306 -- the certificate is public material.
	if err := writeBytesAtomic(bundle.CertificatePath, certPEM, 0644); err != nil {
		return nil, err
	}

	return bundle, nil
}
