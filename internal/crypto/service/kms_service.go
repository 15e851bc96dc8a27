package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

// kmsSchemes are the keeper URL schemes registered by the imports above.
var kmsSchemes = []string{"awskms", "azurekeyvault", "gcpkms", "hashivault", "base64key"}

// ErrUnsupportedKMSScheme is returned for a key URI no registered keeper handles.
var ErrUnsupportedKMSScheme = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported KMS key URI scheme")

// KMSService opens the keeper that wraps the master key at rest.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper rejects unknown schemes before handing keyURI to gocloud, whose
// own error for them lists every registered scheme.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	parsed, err := url.Parse(keyURI)
	if err != nil || !slices.Contains(kmsSchemes, parsed.Scheme) {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", ErrUnsupportedKMSScheme)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper for %s: %w", parsed.Scheme, err)
	}
	return keeper, nil
}
