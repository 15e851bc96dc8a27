package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func newTestMasterKey(t *testing.T) *cryptoDomain.MasterKey {
	t.Helper()
	mk, err := cryptoDomain.NewMasterKey(randomBytes(t, 32))
	require.NoError(t, err)
	return mk
}

func cloneEnvelope(e *cryptoDomain.Envelope) *cryptoDomain.Envelope {
	return &cryptoDomain.Envelope{
		Ciphertext: bytes.Clone(e.Ciphertext),
		WrappedKey: bytes.Clone(e.WrappedKey),
		Nonce:      bytes.Clone(e.Nonce),
	}
}

func TestEnvelopeCipher_RoundTrip(t *testing.T) {
	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			envelopeCipher := NewEnvelopeCipher(NewAEADManager(), alg)
			mk := newTestMasterKey(t)

			for _, plaintext := range []string{"", "good day", "día bueno ☀️ 日本語", string(bytes.Repeat([]byte("a"), 4096))} {
				envelope, err := envelopeCipher.Seal(mk, []byte(plaintext))
				require.NoError(t, err)
				assert.Len(t, envelope.Nonce, cryptoDomain.NonceSize)
				assert.Len(t, envelope.WrappedKey, cryptoDomain.KeySize+16)
				assert.Len(t, envelope.Ciphertext, len(plaintext)+16)

				opened, err := envelopeCipher.Open(mk, envelope)
				require.NoError(t, err)
				assert.Equal(t, plaintext, string(opened))
			}
		})
	}
}

func TestEnvelopeCipher_FreshKeyAndNoncePerSeal(t *testing.T) {
	envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
	mk := newTestMasterKey(t)

	first, err := envelopeCipher.Seal(mk, []byte("same text"))
	require.NoError(t, err)
	second, err := envelopeCipher.Seal(mk, []byte("same text"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Nonce, second.Nonce)
	assert.NotEqual(t, first.WrappedKey, second.WrappedKey)
	assert.NotEqual(t, first.Ciphertext, second.Ciphertext)
}

func TestEnvelopeCipher_TamperDetection(t *testing.T) {
	envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
	mk := newTestMasterKey(t)

	envelope, err := envelopeCipher.Seal(mk, []byte("good day"))
	require.NoError(t, err)

	fields := map[string]func(e *cryptoDomain.Envelope) []byte{
		"ciphertext":  func(e *cryptoDomain.Envelope) []byte { return e.Ciphertext },
		"wrapped key": func(e *cryptoDomain.Envelope) []byte { return e.WrappedKey },
		"nonce":       func(e *cryptoDomain.Envelope) []byte { return e.Nonce },
	}

	for name, field := range fields {
		t.Run(name, func(t *testing.T) {
			for i := range field(envelope) {
				for bit := 0; bit < 8; bit++ {
					tampered := cloneEnvelope(envelope)
					field(tampered)[i] ^= 1 << bit

					opened, err := envelopeCipher.Open(mk, tampered)
					require.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
					require.Nil(t, opened)
				}
			}
		})
	}
}

func TestEnvelopeCipher_OpenFailures(t *testing.T) {
	envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
	mk := newTestMasterKey(t)

	envelope, err := envelopeCipher.Seal(mk, []byte("good day"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		masterKey *cryptoDomain.MasterKey
		envelope  *cryptoDomain.Envelope
	}{
		{name: "wrong master key", masterKey: newTestMasterKey(t), envelope: envelope},
		{name: "nil master key", masterKey: nil, envelope: envelope},
		{name: "nil envelope", masterKey: mk, envelope: nil},
		{
			name:      "short nonce",
			masterKey: mk,
			envelope:  &cryptoDomain.Envelope{Ciphertext: envelope.Ciphertext, WrappedKey: envelope.WrappedKey, Nonce: envelope.Nonce[:4]},
		},
		{
			name:      "truncated wrapped key",
			masterKey: mk,
			envelope:  &cryptoDomain.Envelope{Ciphertext: envelope.Ciphertext, WrappedKey: envelope.WrappedKey[:10], Nonce: envelope.Nonce},
		},
		{
			name:      "empty ciphertext",
			masterKey: mk,
			envelope:  &cryptoDomain.Envelope{WrappedKey: envelope.WrappedKey, Nonce: envelope.Nonce},
		},
		{
			name:      "swapped algorithm",
			masterKey: mk,
			envelope:  cloneEnvelope(envelope),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := envelopeCipher
			if tt.name == "swapped algorithm" {
				c = NewEnvelopeCipher(NewAEADManager(), cryptoDomain.ChaCha20)
			}
			opened, err := c.Open(tt.masterKey, tt.envelope)
			assert.Equal(t, cryptoDomain.ErrDecryptionFailed, err)
			assert.Nil(t, opened)
		})
	}
}

func TestEnvelopeCipher_SealFailures(t *testing.T) {
	t.Run("nil master key", func(t *testing.T) {
		envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
		envelope, err := envelopeCipher.Seal(nil, []byte("x"))
		assert.Nil(t, envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyNotSet)
	})

	t.Run("random source failure", func(t *testing.T) {
		envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
		envelopeCipher.random = failingReader{}

		envelope, err := envelopeCipher.Seal(newTestMasterKey(t), []byte("x"))
		assert.Nil(t, envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
	})

	t.Run("corrupted master key", func(t *testing.T) {
		envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.AESGCM)
		envelope, err := envelopeCipher.Seal(&cryptoDomain.MasterKey{Key: []byte("short")}, []byte("x"))
		assert.Nil(t, envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		envelopeCipher := NewEnvelopeCipher(NewAEADManager(), cryptoDomain.Algorithm("rot13"))
		envelope, err := envelopeCipher.Seal(newTestMasterKey(t), []byte("x"))
		assert.Nil(t, envelope)
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
	})
}
