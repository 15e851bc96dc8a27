package domain

import (
	"github.com/Coops0/jrnlapp/internal/errors"
)

var (
	// ErrEntryNotFound indicates no entry exists for the author and key.
	ErrEntryNotFound = errors.Wrap(errors.ErrNotFound, "entry not found")

	// ErrEntryAlreadyEncrypted indicates an encrypted entry already exists for (author, date).
	ErrEntryAlreadyEncrypted = errors.Wrap(errors.ErrConflict, "entry already encrypted")

	// ErrEncryptionFailed aborts a migration batch: a seal failed or an
	// ephemeral entry reached the cipher.
	ErrEncryptionFailed = errors.New("entry encryption failed")

	// ErrDecryptionFailed means a stored entry failed authentication or holds
	// invalid UTF-8. Treat it as a data integrity alarm.
	ErrDecryptionFailed = errors.New("entry decryption failed")

	// ErrPersistFailed aborts a migration batch on a storage write failure.
	ErrPersistFailed = errors.New("entry persist failed")

	// ErrTooManyEntries rejects a local import larger than the configured cap.
	ErrTooManyEntries = errors.Wrap(errors.ErrInvalidInput, "too many entries")

	// ErrInvalidCursor indicates a malformed pagination cursor.
	ErrInvalidCursor = errors.Wrap(errors.ErrInvalidInput, "invalid cursor")
)
