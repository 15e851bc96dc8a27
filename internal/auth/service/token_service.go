package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

// ErrInvalidToken covers malformed, badly signed, expired and subject-less tokens.
var ErrInvalidToken = apperrors.Wrap(apperrors.ErrUnauthorized, "invalid token")

// Claims are the JWT claims of an author token.
type Claims struct {
	jwt.RegisteredClaims
	Timezone string `json:"tz,omitempty"`
}

type tokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService that signs with HS512 and accepts
// HS256, HS384 and HS512.
func NewTokenService(secret []byte) TokenService {
	return &tokenService{
		secret: secret,
		now:    time.Now,
	}
}

func (t *tokenService) Issue(authorID uuid.UUID, timezone string, ttl time.Duration) (string, error) {
	now := t.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   authorID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Timezone: timezone,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

func (t *tokenService) Verify(token string) (entriesDomain.Author, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return entriesDomain.Author{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return entriesDomain.Author{}, ErrInvalidToken
	}

	authorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return entriesDomain.Author{}, fmt.Errorf("%w: subject is not a uuid", ErrInvalidToken)
	}

	return entriesDomain.NewAuthor(authorID, claims.Timezone), nil
}
