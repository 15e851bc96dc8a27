package http

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/Coops0/jrnlapp/internal/auth/service"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
	"github.com/Coops0/jrnlapp/internal/httputil"
)

var (
	errMissingAuthorization = apperrors.Wrap(apperrors.ErrUnauthorized, "missing authorization header")
	errNotBearer            = apperrors.Wrap(apperrors.ErrUnauthorized, "authorization scheme is not bearer")
	errEmptyToken           = apperrors.Wrap(apperrors.ErrUnauthorized, "empty bearer token")
)

// bearerToken extracts the token from "Bearer <jwt>". The scheme is matched
// case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuthorization
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errNotBearer
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errEmptyToken
	}
	return token, nil
}

// AuthenticationMiddleware verifies the bearer token and stores the author
// and their timezone for GetAuthor. Every failure is a 401.
func AuthenticationMiddleware(tokenService authService.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var author entriesDomain.Author
			if author, err = tokenService.Verify(token); err == nil {
				c.Request = c.Request.WithContext(WithAuthor(c.Request.Context(), author))
				c.Next()
				return
			}
		}

		if !errors.Is(err, apperrors.ErrUnauthorized) {
			err = apperrors.Wrap(apperrors.ErrUnauthorized, err.Error())
		}
		logger.Debug("authentication failed", slog.Any("error", err))
		httputil.HandleErrorGin(c, err, logger)
		c.Abort()
	}
}
