package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements AEAD using ChaCha20-Poly1305.
//
// It is the alternative to AES-GCM for hosts without AES hardware acceleration.
// Nonce and tag sizes match AES-GCM, so envelopes have the same shape.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// NonceSize returns 12.
func (c *ChaCha20Poly1305Cipher) NonceSize() int {
	return c.aead.NonceSize()
}

// Seal encrypts plaintext under nonce.
func (c *ChaCha20Poly1305Cipher) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	return seal(c.aead, nonce, plaintext, aad)
}

// Open decrypts ciphertext, failing on any authentication mismatch.
func (c *ChaCha20Poly1305Cipher) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	return open(c.aead, nonce, ciphertext, aad)
}
