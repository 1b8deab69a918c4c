package shared

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// TokenVault seals short secrets (API tokens) before they are written to Redis.
type TokenVault struct {
	aead cipher.AEAD
}

// NewTokenVault derives the sealing key from secret.
func NewTokenVault(secret string) (*TokenVault, error) {
	if len(secret) < 16 {
		return nil, errors.New("vault: secret must be at least 16 bytes")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("vivionix session tokens v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	return &TokenVault{aead: aead}, nil
}

// Seal encrypts plaintext bound to the associated data (usually the session id).
func (v *TokenVault) Seal(plaintext, associated string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, v.aead.NonceSize(), v.aead.NonceSize()+len(plaintext)+v.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), []byte(associated))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values sealed for another session or key fail with ErrVaultSealed.
func (v *TokenVault) Open(sealed, associated string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < v.aead.NonceSize() {
		return "", ErrVaultSealed
	}
	nonce, ciphertext := raw[:v.aead.NonceSize()], raw[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, ciphertext, []byte(associated))
	if err != nil {
		return "", ErrVaultSealed
	}
	return string(plain), nil
}
