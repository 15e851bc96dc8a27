package domain

import (
	"github.com/Coops0/jrnlapp/internal/errors"
)

var (
	// ErrUnsupportedAlgorithm indicates the configured envelope algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a master or content key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMasterKeyNotSet indicates no master key was configured at startup.
	ErrMasterKeyNotSet = errors.New("master key not set")

	// ErrInvalidMasterKeyBase64 indicates the configured master key is not valid base64.
	ErrInvalidMasterKeyBase64 = errors.New("invalid master key base64")

	// ErrEncryptionFailed indicates an AEAD seal operation failed.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed indicates an envelope could not be opened: the key is
	// wrong, the envelope was tampered with, or a field has the wrong length.
	// The cause is deliberately not distinguished.
	ErrDecryptionFailed = errors.New("decryption failed")
)
