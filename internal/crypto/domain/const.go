package domain

// Algorithm identifies the AEAD used for both layers of an entry envelope.
//
// The algorithm is a process-wide choice fixed for the life of the stored data,
// the same way the master key is: envelopes carry no algorithm tag, so switching
// it would make every existing entry unreadable.
type Algorithm string

const (
	// AESGCM is AES-256-GCM. It is the default and the fastest choice on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, for hosts without AES hardware acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// KeySize is the size in bytes of the master key and of every content key.
	KeySize = 32

	// NonceSize is the size in bytes of the nonce shared by both envelope layers.
	NonceSize = 12
)

// ParseAlgorithm maps a configuration value onto a supported Algorithm.
func ParseAlgorithm(value string) (Algorithm, error) {
	switch Algorithm(value) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
