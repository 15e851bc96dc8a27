package service

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// errInvalidNonceSize guards cipher.AEAD, which panics on a nonce of the wrong length.
var errInvalidNonceSize = errors.New("invalid nonce size")

// AESGCMCipher implements AEAD using AES-256-GCM with a 12-byte nonce and a
// 16-byte tag appended to the ciphertext. Safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates an AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// NonceSize returns 12.
func (a *AESGCMCipher) NonceSize() int {
	return a.aead.NonceSize()
}

// Seal encrypts plaintext under nonce. Empty plaintext yields a tag-only ciphertext.
func (a *AESGCMCipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	return seal(a.aead, nonce, plaintext, aad)
}

// Open decrypts ciphertext, failing on any authentication mismatch.
func (a *AESGCMCipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	return open(a.aead, nonce, ciphertext, aad)
}

func seal(aead cipher.AEAD, nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, errInvalidNonceSize
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

func open(aead cipher.AEAD, nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != aead.NonceSize() {
		return nil, errInvalidNonceSize
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
