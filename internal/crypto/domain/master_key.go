// Package domain defines the key material and envelope types used to encrypt
// journal entries at rest.
//
// A single master key wraps one random content key per entry; the content key
// encrypts the entry text. The master key never touches user content.
package domain

import (
	"context"
	"fmt"
)

// MasterKey is the 256-bit key that wraps every content key.
//
// It is loaded once at startup and passed by pointer to every component that
// needs it. Nothing mutates it after construction except Close at shutdown.
// Never log or persist it.
type MasterKey struct {
	Key []byte
}

// NewMasterKey copies key into a new MasterKey. The caller keeps ownership of
// key and may zero it afterwards.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterKey{Key: k}, nil
}

// Close zeroes the key material.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
}

// String keeps the key out of logs and fmt output.
func (m *MasterKey) String() string {
	return "MasterKey(redacted)"
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap the master key.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
