// Package service converts entries between their active and encrypted forms.
package service

import (
	"fmt"
	"unicode/utf8"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// EntryCipher seals active entries and opens encrypted ones. It performs no I/O.
type EntryCipher interface {
	Encrypt(entry *entriesDomain.ActiveEntry) (*entriesDomain.EncryptedEntry, error)
	Decrypt(entry *entriesDomain.EncryptedEntry) (*entriesDomain.DecryptedEntry, error)
}

type entryCipher struct {
	masterKey *cryptoDomain.MasterKey
	envelope  cryptoService.EnvelopeCipher
}

// NewEntryCipher binds an envelope cipher to the process master key.
func NewEntryCipher(masterKey *cryptoDomain.MasterKey, envelope cryptoService.EnvelopeCipher) EntryCipher {
	return &entryCipher{
		masterKey: masterKey,
		envelope:  envelope,
	}
}

// Encrypt seals the entry text, or the empty string when it has none.
// Ephemeral entries are refused.
func (c *entryCipher) Encrypt(entry *entriesDomain.ActiveEntry) (*entriesDomain.EncryptedEntry, error) {
	if entry.Ephemeral {
		return nil, fmt.Errorf("%w: entry %s is ephemeral", entriesDomain.ErrEncryptionFailed, entry.ID)
	}

	var plaintext []byte
	if entry.Text != nil {
		plaintext = []byte(*entry.Text)
	}

	envelope, err := c.envelope.Seal(c.masterKey, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s: %v", entriesDomain.ErrEncryptionFailed, entry.ID, err)
	}

	return &entriesDomain.EncryptedEntry{
		ID:               entry.ID,
		Author:           entry.Author,
		Date:             entry.Date,
		EmotionScale:     entry.EmotionScale,
		EncryptedContent: envelope.Ciphertext,
		ContentKey:       envelope.WrappedKey,
		Nonce:            envelope.Nonce,
	}, nil
}

// Decrypt opens the entry. An empty plaintext maps back to a nil Text.
func (c *entryCipher) Decrypt(entry *entriesDomain.EncryptedEntry) (*entriesDomain.DecryptedEntry, error) {
	plaintext, err := c.envelope.Open(c.masterKey, &cryptoDomain.Envelope{
		Ciphertext: entry.EncryptedContent,
		WrappedKey: entry.ContentKey,
		Nonce:      entry.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s: %v", entriesDomain.ErrDecryptionFailed, entry.ID, err)
	}

	if !utf8.Valid(plaintext) {
		return nil, fmt.Errorf("%w: entry %s: invalid utf-8", entriesDomain.ErrDecryptionFailed, entry.ID)
	}

	var text *string
	if len(plaintext) > 0 {
		s := string(plaintext)
		text = &s
	}

	return &entriesDomain.DecryptedEntry{
		ID:           entry.ID,
		Author:       entry.Author,
		Date:         entry.Date,
		EmotionScale: entry.EmotionScale,
		Text:         text,
	}, nil
}
