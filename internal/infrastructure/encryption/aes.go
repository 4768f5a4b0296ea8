// Package encryption provides the AES symmetric encryption worker.
package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/omnihive/backend/internal/domain/ports"
)

const (
	ivSize  = aes.BlockSize
	macSize = sha256.Size
)

var (
	ErrMalformed      = errors.New("encrypted payload is malformed")
	ErrTampered       = errors.New("encrypted payload failed authentication")
	ErrInvalidPadding = errors.New("encrypted payload has invalid padding")
)

// AESWorker encrypts with AES-CBC and a random IV.
//
// Authenticated (the default): the wire format is
// base64(iv) + ":" + base64(ciphertext || hmac), with AES-256 and HMAC keys
// derived from the configured secret with HKDF-SHA256.
//
// Unauthenticated: the wire format is base64(iv) + ":" + base64(ciphertext)
// and the secret is a base64 AES key used as is. This is what existing
// clients send, so custom SQL from them only decrypts in this mode.
type AESWorker struct {
	encKey       []byte
	macKey       []byte
	authenticate bool
}

// NewAESWorker prepares the keys for secret. With authenticate false the MAC
// is neither written nor checked and secret must decode to a 16, 24 or 32
// byte key.
func NewAESWorker(secret string, authenticate bool) (*AESWorker, error) {
	if secret == "" {
		return nil, errors.New("encryption key is required")
	}
	if !authenticate {
		key, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("encryption key must be base64: %w", err)
		}
		switch len(key) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("encryption key decodes to %d bytes, want 16, 24 or 32", len(key))
		}
		return &AESWorker{encKey: key}, nil
	}
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("hive-symmetric-v1"))
	keys := make([]byte, 64)
	if _, err := io.ReadFull(kdf, keys); err != nil {
		return nil, fmt.Errorf("failed to derive keys: %w", err)
	}
	return &AESWorker{encKey: keys[:32], macKey: keys[32:], authenticate: true}, nil
}

func (w *AESWorker) mac(iv, ct []byte) []byte {
	m := hmac.New(sha256.New, w.macKey)
	m.Write(iv)
	m.Write(ct)
	return m.Sum(nil)
}

// SymmetricEncrypt encrypts plain text into the wire format
func (w *AESWorker) SymmetricEncrypt(plain string) (string, error) {
	block, err := aes.NewCipher(w.encKey)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	if w.authenticate {
		ct = append(ct, w.mac(iv, ct)...)
	}
	return base64.StdEncoding.EncodeToString(iv) + ":" + base64.StdEncoding.EncodeToString(ct), nil
}

// SymmetricDecrypt reverses SymmetricEncrypt, failing on any modification
func (w *AESWorker) SymmetricDecrypt(encoded string) (string, error) {
	ivPart, ctPart, ok := strings.Cut(encoded, ":")
	if !ok {
		return "", ErrMalformed
	}
	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil || len(iv) != ivSize {
		return "", ErrMalformed
	}
	ct, err := base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return "", ErrMalformed
	}

	if w.authenticate {
		if len(ct) < macSize {
			return "", ErrMalformed
		}
		tag := ct[len(ct)-macSize:]
		ct = ct[:len(ct)-macSize]
		if !hmac.Equal(tag, w.mac(iv, ct)) {
			return "", ErrTampered
		}
	}
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", ErrMalformed
	}

	block, err := aes.NewCipher(w.encKey)
	if err != nil {
		return "", err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}
	return data[:len(data)-n], nil
}

var _ ports.EncryptionWorker = (*AESWorker)(nil)
