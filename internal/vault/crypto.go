package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"unicode/utf8"

	kerrors "github.com/PolarWolf314/vaultrunner/internal/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of the random PBKDF2 salt prepended to every token.
	SaltSize = 16

	// IVSize is the length of the CBC initialization vector, one AES block.
	IVSize = aes.BlockSize

	// KeySize selects AES-256.
	KeySize = 32

	// KDFIterations is the PBKDF2-HMAC-SHA256 work factor. It is not stored in
	// the record, so changing it makes existing records unreadable.
	KDFIterations = 100_000

	headerSize = SaltSize + IVSize
)

// randReader is the entropy source for salts, IVs and credentials.
var randReader io.Reader = rand.Reader

// deriveKey stretches a password into an AES-256 key.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, KDFIterations, KeySize, sha256.New)
}

// zeroBytes overwrites key material once it is no longer needed.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Encrypt wraps plaintext under a key derived from password.
//
// The returned token is base64(salt || iv || ciphertext). A fresh salt and IV
// are drawn for every call, so encrypting the same input twice yields
// different tokens.
func Encrypt(plaintext, password string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", kerrors.ErrEncoding
	}

	header := make([]byte, headerSize)
	if _, err := io.ReadFull(randReader, header); err != nil {
		return "", fmt.Errorf("generating salt and iv: %w", err)
	}
	salt, iv := header[:SaltSize], header[SaltSize:]

	key := deriveKey(password, salt)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	padded := pad([]byte(plaintext), aes.BlockSize)
	defer zeroBytes(padded)

	out := make([]byte, headerSize+len(padded))
	copy(out, header)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[headerSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt.
//
// Returns ErrFormat if the token is not base64 or its length cannot hold a
// header and at least one whole block. Returns ErrDecryption if the padding or
// the recovered text does not validate. The scheme has no MAC, so a wrong
// password is only detected through those checks.
func Decrypt(token, password string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: token is not base64: %v", kerrors.ErrFormat, err)
	}
	if len(raw) < headerSize {
		return "", fmt.Errorf("%w: token is %d bytes, shorter than the %d byte header", kerrors.ErrFormat, len(raw), headerSize)
	}

	ciphertext := raw[headerSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a positive multiple of %d", kerrors.ErrFormat, len(ciphertext), aes.BlockSize)
	}

	salt, iv := raw[:SaltSize], raw[SaltSize:headerSize]

	key := deriveKey(password, salt)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	defer zeroBytes(padded)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	data, err := unpad(padded, aes.BlockSize)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: recovered data is not valid UTF-8", kerrors.ErrDecryption)
	}

	return string(data), nil
}

// pad applies PKCS#7 padding. A full block is added when data is already aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// unpad strips PKCS#7 padding, rejecting out-of-range or non-uniform padding.
func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: padded length %d is not block aligned", kerrors.ErrDecryption, len(data))
	}

	n := int(data[len(data)-1])
	if n < 1 || n > blockSize {
		return nil, fmt.Errorf("%w: invalid padding length", kerrors.ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: inconsistent padding", kerrors.ErrDecryption)
		}
	}

	return data[:len(data)-n], nil
}
