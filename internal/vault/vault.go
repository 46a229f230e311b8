package vault

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"github.com/google/uuid"
)

const (
	// RecordFile is the encrypted credential record under keys/.
	RecordFile = "vault_key.enc"

	// credentialBytes of randomness back every generated credential (hex encoded).
	credentialBytes = 32
)

// Vault stores a password-protected credential and a TLS bundle in a directory pair.
type Vault struct {
	Dir      string
	KeysDir  string
	CertsDir string

	now func() time.Time
}

// New returns a Vault rooted at dir. Nothing is created on disk until a write.
func New(dir string) *Vault {
	return &Vault{
		Dir:      dir,
		KeysDir:  filepath.Join(dir, "keys"),
		CertsDir: filepath.Join(dir, "certs"),
		now:      time.Now,
	}
}

// RecordPath returns the location of the encrypted credential record.
func (v *Vault) RecordPath() string {
	return filepath.Join(v.KeysDir, RecordFile)
}

// InitOptions configures Initialize.
type InitOptions struct {
	// Overwrite replaces an existing record instead of failing.
	Overwrite bool

	// CommonName for a newly issued certificate. Defaults to localhost.
	CommonName string

	// ReissueCertificate issues a new bundle even if one already exists.
	ReissueCertificate bool
}

// InitResult is returned once by Initialize. Credential is never shown again.
type InitResult struct {
	Credential      string
	KeyID           string
	CertificatePath string
	PrivateKeyPath  string
	CommonName      string
	CertificateNew  bool
}

// Initialize generates a fresh credential, makes sure a certificate bundle
// exists, encrypts the credential under password and stores the record.
//
// Returns ErrAlreadyInitialized if a record exists and opts.Overwrite is false.
func (v *Vault) Initialize(password string, opts InitOptions) (*InitResult, error) {
	exists, err := fileExists(v.RecordPath())
	if err != nil {
		return nil, err
	}
	if exists && !opts.Overwrite {
		return nil, kerrors.ErrAlreadyInitialized
	}

	credential, err := generateCredential()
	if err != nil {
		return nil, err
	}

	result := &InitResult{
		Credential:      credential,
		KeyID:           uuid.NewString(),
		CertificatePath: v.CertificatePath(),
		PrivateKeyPath:  v.PrivateKeyPath(),
	}

	hasCert, err := v.HasCertificate()
	if err != nil {
		return nil, err
	}
	if hasCert && !opts.ReissueCertificate {
		// The kept certificate decides the recorded common name.
		bundle, err := v.LoadCertificate()
		if err != nil {
			return nil, err
		}
		result.CommonName = bundle.CommonName
	} else {
		bundle, err := v.IssueCertificate(opts.CommonName)
		if err != nil {
			return nil, fmt.Errorf("issuing certificate: %w", err)
		}
		result.CommonName = bundle.CommonName
		result.CertificateNew = true
	}

	token, err := Encrypt(credential, password)
	if err != nil {
		return nil, fmt.Errorf("encrypting credential: %w", err)
	}

	now := v.now()
	metadata := map[string]string{
		MetaCertificate: result.CertificatePath,
		MetaPrivateKey:  result.PrivateKeyPath,
		MetaInitialized: now.UTC().Format(time.RFC3339),
		MetaKeyID:       result.KeyID,
		MetaCommonName:  result.CommonName,
	}
	if err := v.writeRecord(newRecord(token, metadata, now)); err != nil {
		return nil, err
	}

	return result, nil
}

// Export decrypts the stored credential.
//
// Returns ErrNotInitialized when no record exists, ErrFormat when the record is
// corrupted and ErrDecryption when the password does not unlock it.
func (v *Vault) Export(password string) (string, error) {
	record, err := v.readRecord()
	if err != nil {
		return "", err
	}
	return Decrypt(record.EncryptedKey, password)
}

// Rotate re-encrypts the stored credential under newPassword with a fresh
// salt and IV. The credential itself is unchanged. If oldPassword does not
// decrypt the record, the stored file is left untouched.
func (v *Vault) Rotate(oldPassword, newPassword string) error {
	record, err := v.readRecord()
	if err != nil {
		return err
	}

	credential, err := Decrypt(record.EncryptedKey, oldPassword)
	if err != nil {
		return err
	}

	token, err := Encrypt(credential, newPassword)
	if err != nil {
		return fmt.Errorf("encrypting credential: %w", err)
	}

	now := v.now()
	record.Metadata[MetaPasswordRotated] = now.UTC().Format(time.RFC3339)

	return v.writeRecord(newRecord(token, record.Metadata, now))
}

// LoadMetadata returns the non-secret part of the stored record, or nil if
// the vault has not been initialized. No password is required.
func (v *Vault) LoadMetadata() (*RecordInfo, error) {
	record, err := v.readRecord()
	if err != nil {
		if errors.Is(err, kerrors.ErrNotInitialized) {
			return nil, nil
		}
		return nil, err
	}
	return record.info(v.RecordPath()), nil
}

func (v *Vault) readRecord() (*Record, error) {
	data, err := os.ReadFile(v.RecordPath())
	if os.IsNotExist(err) {
		return nil, kerrors.ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", kerrors.ErrIO, v.RecordPath(), err)
	}
	return parseRecord(data)
}

func (v *Vault) writeRecord(record *Record) error {
	data, err := record.marshal()
	if err != nil {
		return err
	}
	return v.writeRecordFrom(bytes.NewReader(data))
}

// writeRecordFrom is split out so a reader that fails mid-stream can stand in
// for a crash during the write.
func (v *Vault) writeRecordFrom(r io.Reader) error {
	return writeFileAtomic(v.RecordPath(), r, 0600)
}

func generateCredential() (string, error) {
	buf := make([]byte, credentialBytes)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("generating credential: %w", err)
	}
	defer zeroBytes(buf)
	return hex.EncodeToString(buf), nil
}
