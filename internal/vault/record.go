package vault

import (
	"encoding/json"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
)

// RecordVersion is the on-disk schema version written by this package.
const RecordVersion = "1.0"

// Metadata keys stored alongside the encrypted credential.
const (
	MetaCertificate     = "ssl_certificate"
	MetaPrivateKey      = "ssl_private_key"
	MetaInitialized     = "vault_initialized"
	MetaKeyID           = "key_id"
	MetaCommonName      = "common_name"
	MetaPasswordRotated = "password_rotated"
)

// Record is the persisted form of an encrypted credential. It is always
// written as one unit.
type Record struct {
	EncryptedKey string            `json:"encrypted_key"`
	Metadata     map[string]string `json:"metadata"`
	CreatedAt    string            `json:"created_at"`
	Version      string            `json:"version"`
}

func newRecord(token string, metadata map[string]string, now time.Time) *Record {
	return &Record{
		EncryptedKey: token,
		Metadata:     metadata,
		CreatedAt:    now.UTC().Format(time.RFC3339),
		Version:      RecordVersion,
	}
}

func (r *Record) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return append(data, '\n'), nil
}

func parseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrFormat, err)
	}
	if r.Version != RecordVersion {
		return nil, fmt.Errorf("%w: unsupported record version %q", kerrors.ErrFormat, r.Version)
	}
	if r.EncryptedKey == "" {
		return nil, fmt.Errorf("%w: record has no encrypted key", kerrors.ErrFormat)
	}
	if r.Metadata == nil {
		r.Metadata = make(map[string]string)
	}
	return &r, nil
}

// RecordInfo is the non-secret view of a stored record.
type RecordInfo struct {
	Path        string
	Metadata    map[string]string
	CreatedAt   string
	Version     string
	HasBlob     bool
	KeyID       string
	Certificate string
	PrivateKey  string
	Initialized string
	RotatedAt   string
}

func (r *Record) info(path string) *RecordInfo {
	meta := make(map[string]string, len(r.Metadata))
	for k, v := range r.Metadata {
		meta[k] = v
	}
	return &RecordInfo{
		Path:        path,
		Metadata:    meta,
		CreatedAt:   r.CreatedAt,
		Version:     r.Version,
		HasBlob:     r.EncryptedKey != "",
		KeyID:       meta[MetaKeyID],
		Certificate: meta[MetaCertificate],
		PrivateKey:  meta[MetaPrivateKey],
		Initialized: meta[MetaInitialized],
		RotatedAt:   meta[MetaPasswordRotated],
	}
}
