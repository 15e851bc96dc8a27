// Package service implements the envelope cipher that protects journal entries:
// AEAD primitives, the two-layer seal/open, master key loading and the bounded
// worker pool that keeps CPU-bound crypto off request goroutines.
package service

import (
	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
)

// AEAD is an authenticated cipher that takes its nonce from the caller.
//
// The envelope scheme shares one nonce between the key wrap and the content
// seal, so nonce generation lives in EnvelopeCipher rather than here.
type AEAD interface {
	// NonceSize returns the nonce length Seal and Open require.
	NonceSize() int

	// Seal encrypts and authenticates plaintext and optional aad.
	Seal(nonce, plaintext, aad []byte) ([]byte, error)

	// Open authenticates and decrypts ciphertext sealed with the same nonce and aad.
	Open(nonce, ciphertext, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD instances for a key and algorithm.
type AEADManager interface {
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// EnvelopeCipher seals plaintext under a fresh content key wrapped by the master key.
type EnvelopeCipher interface {
	// Seal draws a fresh content key and nonce, wraps the key under masterKey
	// and encrypts plaintext under the content key.
	Seal(masterKey *cryptoDomain.MasterKey, plaintext []byte) (*cryptoDomain.Envelope, error)

	// Open reverses Seal. Every failure is reported as ErrDecryptionFailed.
	Open(masterKey *cryptoDomain.MasterKey, envelope *cryptoDomain.Envelope) ([]byte, error)
}
