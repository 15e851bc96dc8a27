package service

import (
	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
)

type aeadConstructor func(key []byte) (AEAD, error)

// aeadConstructors lists every algorithm an envelope may be sealed with.
var aeadConstructors = map[cryptoDomain.Algorithm]aeadConstructor{
	cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
		return NewAESGCM(key)
	},
	cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
		return NewChaCha20Poly1305(key)
	},
}

// AEADManagerService builds the AEAD for one layer of an envelope.
type AEADManagerService struct{}

func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher keys alg with key. Both master and content keys are KeySize bytes.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	construct, ok := aeadConstructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return construct(key)
}
