package repository

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const sealedPrefix = "sealed:"

// KeySealer encrypts the API key at rest with NaCl secretbox. A nil sealer passes values through.
type KeySealer struct {
	key [32]byte
}

// NewKeySealer derives the box key from secret. An empty secret disables sealing.
func NewKeySealer(secret string) *KeySealer {
	if secret == "" {
		return nil
	}
	return &KeySealer{key: sha256.Sum256([]byte(secret))}
}

// Seal returns "sealed:<base64(nonce|box)>". Empty values stay empty.
func (s *KeySealer) Seal(plain string) (string, error) {
	if s == nil || plain == "" {
		return plain, nil
	}
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plain), &nonce, &s.key)
	return sealedPrefix + base64.StdEncoding.EncodeToString(box), nil
}

// Unseal reverses Seal. Values without the sealed prefix are returned as stored.
func (s *KeySealer) Unseal(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	if s == nil {
		return "", errors.New("sealed value found but no storage secret configured")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < 24+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	plain, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", errors.New("sealed value does not match storage secret")
	}
	return string(plain), nil
}
