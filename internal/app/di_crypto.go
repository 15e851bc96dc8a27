package app

import (
	"context"
	"fmt"
	"sync"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
	entriesService "github.com/Coops0/jrnlapp/internal/entries/service"
)

type cryptoComponents struct {
	kmsInit  sync.Once
	kms      cryptoService.KMSService
	pool     lazy[*cryptoService.WorkerPool]
	envelope lazy[cryptoService.EnvelopeCipher]

	masterKey   lazy[*cryptoDomain.MasterKey]
	entryCipher lazy[entriesService.EntryCipher]
}

// KMSService returns the gocloud.dev keeper opener.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsInit.Do(func() {
		c.kms = cryptoService.NewKMSService()
	})
	return c.kms
}

// MasterKey loads MASTER_KEY, unwrapping it through KMS_KEY_URI when set.
// A missing or malformed key is an error for every command that encrypts or
// decrypts, so the server refuses to start without one.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	return c.masterKey.get(func() (*cryptoDomain.MasterKey, error) {
		masterKey, err := cryptoService.LoadMasterKey(
			context.Background(),
			c.config.MasterKey,
			c.config.KMSKeyURI,
			c.KMSService(),
			c.Logger(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load master key: %w", err)
		}
		return masterKey, nil
	})
}

// WorkerPool returns the process-wide pool for encrypt and decrypt jobs.
func (c *Container) WorkerPool() *cryptoService.WorkerPool {
	pool, _ := c.pool.get(func() (*cryptoService.WorkerPool, error) {
		return cryptoService.NewWorkerPool(c.config.CryptoWorkers), nil
	})
	return pool
}

func (c *Container) EnvelopeCipher() (cryptoService.EnvelopeCipher, error) {
	return c.envelope.get(func() (cryptoService.EnvelopeCipher, error) {
		alg, err := cryptoDomain.ParseAlgorithm(c.config.EntryCipherAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("invalid entry cipher algorithm %q: %w", c.config.EntryCipherAlgorithm, err)
		}
		return cryptoService.NewEnvelopeCipher(cryptoService.NewAEADManager(), alg), nil
	})
}

// EntryCipher binds the envelope cipher to the master key.
func (c *Container) EntryCipher() (entriesService.EntryCipher, error) {
	return c.entryCipher.get(func() (entriesService.EntryCipher, error) {
		masterKey, err := c.MasterKey()
		if err != nil {
			return nil, err
		}
		envelope, err := c.EnvelopeCipher()
		if err != nil {
			return nil, err
		}
		return entriesService.NewEntryCipher(masterKey, envelope), nil
	})
}
