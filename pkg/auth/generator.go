package auth

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Supported generator hash algorithms
const (
	HashSHA256   = "sha256"
	HashSHA512   = "sha512"
	HashSHA3_256 = "sha3-256"
)

func newHash(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "", HashSHA256:
		return sha256.New(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashSHA3_256:
		return sha3.New256(), nil
	}
	return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
}

// GeneratorHash hashes token worker metadata into the generator value a
// client must present to obtain an access token. Map keys are serialized in
// sorted order so the digest is stable.
func GeneratorHash(metadata map[string]any, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata: %w", err)
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyGenerator compares a presented generator with the metadata hash
func VerifyGenerator(generator string, metadata map[string]any, algorithm string) (bool, error) {
	expected, err := GeneratorHash(metadata, algorithm)
	if err != nil {
		return false, err
	}
	return generator != "" && strings.EqualFold(generator, expected), nil
}
