package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
)

// LoadMasterKey decodes the configured master key.
//
// encoded is standard base64. With an empty kmsKeyURI it must decode to the
// 32 raw key bytes; otherwise it is KMS ciphertext that the keeper for
// kmsKeyURI decrypts into those bytes. Intermediate buffers are zeroed.
func LoadMasterKey(
	ctx context.Context,
	encoded string,
	kmsKeyURI string,
	kms KMSService,
	logger *slog.Logger,
) (*cryptoDomain.MasterKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidMasterKeyBase64, err)
	}

	if kmsKeyURI == "" {
		defer cryptoDomain.Zero(decoded)
		return cryptoDomain.NewMasterKey(decoded)
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil && logger != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	key, err := keeper.Decrypt(ctx, decoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master key with KMS: %w", err)
	}
	defer cryptoDomain.Zero(key)

	masterKey, err := cryptoDomain.NewMasterKey(key)
	if err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("master key loaded from KMS")
	}
	return masterKey, nil
}

// GenerateMasterKey creates a random master key and returns it in the form
// LoadMasterKey expects: raw base64 when kmsKeyURI is empty, otherwise the
// base64 of its KMS ciphertext.
func GenerateMasterKey(ctx context.Context, kmsKeyURI string, kms KMSService) (string, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(key)

	if kmsKeyURI == "" {
		return base64.StdEncoding.EncodeToString(key), nil
	}

	keeper, err := kms.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
