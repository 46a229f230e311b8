package vault

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

func parseCertificate(t *testing.T, path string) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(readFile(t, path))
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("No CERTIFICATE block in %s", path)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}
	return cert
}

func TestIssueCertificate_Defaults(t *testing.T) {
	v := newTestVault(t)

	bundle, err := v.IssueCertificate("")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	cert := parseCertificate(t, bundle.CertificatePath)

	if cert.Subject.CommonName != DefaultCommonName {
		t.Errorf("Expected common name %q, got %q", DefaultCommonName, cert.Subject.CommonName)
	}
	if cert.Subject.String() != cert.Issuer.String() {
		t.Errorf("Expected self-signed certificate, subject %q issuer %q", cert.Subject, cert.Issuer)
	}
	if err := cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature); err != nil {
		t.Errorf("Certificate is not signed by its own key: %v", err)
	}

	roots := x509.NewCertPool()
	roots.AddCert(cert)
	if _, err := cert.Verify(x509.VerifyOptions{Roots: roots, DNSName: "localhost", CurrentTime: cert.NotBefore}); err != nil {
		t.Errorf("Certificate does not verify when pinned as a root: %v", err)
	}

	if got := cert.NotAfter.Sub(cert.NotBefore); got != CertificateValidity {
		t.Errorf("Expected validity of %v, got %v", CertificateValidity, got)
	}
	if !cert.NotBefore.Equal(v.now().UTC()) {
		t.Errorf("Expected NotBefore %v, got %v", v.now().UTC(), cert.NotBefore)
	}

	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "localhost" {
		t.Errorf("Expected DNS SANs [localhost], got %v", cert.DNSNames)
	}
	for _, want := range []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")} {
		found := false
		for _, ip := range cert.IPAddresses {
			if ip.Equal(want) {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected IP SAN %s, got %v", want, cert.IPAddresses)
		}
	}

	if err := cert.VerifyHostname("localhost"); err != nil {
		t.Errorf("Certificate not valid for localhost: %v", err)
	}
	if err := cert.VerifyHostname("127.0.0.1"); err != nil {
		t.Errorf("Certificate not valid for 127.0.0.1: %v", err)
	}
}

func TestIssueCertificate_CustomCommonName(t *testing.T) {
	v := newTestVault(t)

	bundle, err := v.IssueCertificate("vault.example.internal")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	cert := parseCertificate(t, bundle.CertificatePath)
	if cert.Subject.CommonName != "vault.example.internal" {
		t.Errorf("Unexpected common name %q", cert.Subject.CommonName)
	}
	for _, host := range []string{"vault.example.internal", "localhost"} {
		if err := cert.VerifyHostname(host); err != nil {
			t.Errorf("Certificate not valid for %s: %v", host, err)
		}
	}
}

func TestIssueCertificate_PrivateKey(t *testing.T) {
	v := newTestVault(t)

	bundle, err := v.IssueCertificate("localhost")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	block, _ := pem.Decode(readFile(t, bundle.PrivateKeyPath))
	if block == nil || block.Type != "PRIVATE KEY" {
		t.Fatal("Expected an unencrypted PKCS#8 PRIVATE KEY block")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		t.Fatalf("Failed to parse PKCS#8 key: %v", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		t.Fatalf("Expected RSA key, got %T", key)
	}
	if rsaKey.N.BitLen() != 2048 {
		t.Errorf("Expected 2048-bit key, got %d", rsaKey.N.BitLen())
	}

	cert := parseCertificate(t, bundle.CertificatePath)
	if !rsaKey.PublicKey.Equal(cert.PublicKey) {
		t.Error("Private key does not match certificate")
	}

	if runtime.GOOS != "windows" {
		keyInfo, err := os.Stat(bundle.PrivateKeyPath)
		if err != nil {
			t.Fatalf("Failed to stat key: %v", err)
		}
		if perm := keyInfo.Mode().Perm(); perm != 0600 {
			t.Errorf("Expected key permissions 0600, got %o", perm)
		}
		dirInfo, err := os.Stat(v.CertsDir)
		if err != nil {
			t.Fatalf("Failed to stat certs dir: %v", err)
		}
		if perm := dirInfo.Mode().Perm(); perm != 0700 {
			t.Errorf("Expected certs dir permissions 0700, got %o", perm)
		}
	}
}

func TestIssueCertificate_Reissue(t *testing.T) {
	v := newTestVault(t)

	first, err := v.IssueCertificate("localhost")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}
	serialBefore := parseCertificate(t, first.CertificatePath).SerialNumber

	second, err := v.IssueCertificate("localhost")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}
	if second.CertificatePath != first.CertificatePath || second.PrivateKeyPath != first.PrivateKeyPath {
		t.Error("Reissue should use the same fixed paths")
	}
	if parseCertificate(t, second.CertificatePath).SerialNumber.Cmp(serialBefore) == 0 {
		t.Error("Expected a new certificate after reissue")
	}
}

func TestIssueCertificate_UnwritableDirectory(t *testing.T) {
	v := newTestVault(t)

	// A regular file where the certs directory belongs cannot be created over.
	if err := os.MkdirAll(v.Dir, 0700); err != nil {
		t.Fatalf("Failed to create vault dir: %v", err)
	}
	if err := os.WriteFile(v.CertsDir, []byte("blocker"), 0600); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}

	_, err := v.IssueCertificate("localhost")
	if !errors.Is(err, kerrors.ErrIO) {
		t.Errorf("Expected ErrIO, got %v", err)
	}
}

func TestLoadCertificate(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.LoadCertificate(); !errors.Is(err, kerrors.ErrCertificateNotFound) {
		t.Fatalf("Expected ErrCertificateNotFound before issuance, got %v", err)
	}

	issued, err := v.IssueCertificate("vault.internal")
	if err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	loaded, err := v.LoadCertificate()
	if err != nil {
		t.Fatalf("LoadCertificate failed: %v", err)
	}
	if loaded.CommonName != "vault.internal" {
		t.Errorf("Expected common name vault.internal, got %q", loaded.CommonName)
	}
	if !loaded.NotBefore.Equal(issued.NotBefore) || !loaded.NotAfter.Equal(issued.NotAfter) {
		t.Errorf("Validity window mismatch: issued %v-%v, loaded %v-%v",
			issued.NotBefore, issued.NotAfter, loaded.NotBefore, loaded.NotAfter)
	}

	if err := os.WriteFile(v.CertificatePath(), []byte("garbage"), 0644); err != nil {
		t.Fatalf("Failed to corrupt certificate: %v", err)
	}
	if _, err := v.LoadCertificate(); !errors.Is(err, kerrors.ErrFormat) {
		t.Errorf("Expected ErrFormat for a corrupted certificate, got %v", err)
	}
}

func TestIssueCertificate_FailedKeyWriteKeepsCertificate(t *testing.T) {
	v := newTestVault(t)

	if _, err := v.IssueCertificate("first.internal"); err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}
	certBefore := readFile(t, v.CertificatePath())

	// A non-empty directory at the key path cannot be replaced by a rename.
	if err := os.Remove(v.PrivateKeyPath()); err != nil {
		t.Fatalf("Failed to remove key: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(v.PrivateKeyPath(), "blocker"), 0700); err != nil {
		t.Fatalf("Failed to create blocker dir: %v", err)
	}

	if _, err := v.IssueCertificate("second.internal"); !errors.Is(err, kerrors.ErrIO) {
		t.Fatalf("Expected ErrIO, got %v", err)
	}
	if !bytes.Equal(certBefore, readFile(t, v.CertificatePath())) {
		t.Error("Certificate was replaced although the key write failed")
	}
}
