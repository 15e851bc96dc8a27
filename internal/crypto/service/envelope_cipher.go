package service

import (
	"crypto/rand"
	"fmt"
	"io"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
)

// EnvelopeCipherService implements EnvelopeCipher on top of an AEADManager.
//
// Each Seal draws a new 32-byte content key and a new 12-byte nonce. The nonce
// is used for both the key wrap (under the master key) and the content seal
// (under the content key). No associated data is bound to either layer.
type EnvelopeCipherService struct {
	aeadManager AEADManager
	alg         cryptoDomain.Algorithm
	random      io.Reader
}

// NewEnvelopeCipher creates an EnvelopeCipherService using alg for both layers.
func NewEnvelopeCipher(aeadManager AEADManager, alg cryptoDomain.Algorithm) *EnvelopeCipherService {
	return &EnvelopeCipherService{
		aeadManager: aeadManager,
		alg:         alg,
		random:      rand.Reader,
	}
}

// Seal implements EnvelopeCipher. All failures wrap ErrEncryptionFailed.
func (s *EnvelopeCipherService) Seal(
	masterKey *cryptoDomain.MasterKey,
	plaintext []byte,
) (*cryptoDomain.Envelope, error) {
	if masterKey == nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrEncryptionFailed, cryptoDomain.ErrMasterKeyNotSet)
	}

	contentKey := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(s.random, contentKey); err != nil {
		return nil, encryptionFailed("generate content key", err)
	}
	defer cryptoDomain.Zero(contentKey)

	nonce := make([]byte, cryptoDomain.NonceSize)
	if _, err := io.ReadFull(s.random, nonce); err != nil {
		return nil, encryptionFailed("generate nonce", err)
	}

	masterAEAD, err := s.aeadManager.CreateCipher(masterKey.Key, s.alg)
	if err != nil {
		return nil, encryptionFailed("create master cipher", err)
	}

	wrappedKey, err := masterAEAD.Seal(nonce, contentKey, nil)
	if err != nil {
		return nil, encryptionFailed("wrap content key", err)
	}

	contentAEAD, err := s.aeadManager.CreateCipher(contentKey, s.alg)
	if err != nil {
		return nil, encryptionFailed("create content cipher", err)
	}

	ciphertext, err := contentAEAD.Seal(nonce, plaintext, nil)
	if err != nil {
		return nil, encryptionFailed("seal content", err)
	}

	return &cryptoDomain.Envelope{
		Ciphertext: ciphertext,
		WrappedKey: wrappedKey,
		Nonce:      nonce,
	}, nil
}

// Open implements EnvelopeCipher. The returned error is always exactly
// ErrDecryptionFailed so callers cannot tell a bad tag from a bad length.
func (s *EnvelopeCipherService) Open(
	masterKey *cryptoDomain.MasterKey,
	envelope *cryptoDomain.Envelope,
) ([]byte, error) {
	if masterKey == nil || envelope == nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	masterAEAD, err := s.aeadManager.CreateCipher(masterKey.Key, s.alg)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	contentKey, err := masterAEAD.Open(envelope.Nonce, envelope.WrappedKey, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(contentKey)

	contentAEAD, err := s.aeadManager.CreateCipher(contentKey, s.alg)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := contentAEAD.Open(envelope.Nonce, envelope.Ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

func encryptionFailed(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", cryptoDomain.ErrEncryptionFailed, step, err)
}
