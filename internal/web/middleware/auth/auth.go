package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	appauth "github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const bearerScheme = "Bearer"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (*appauth.Claims, error)
}

// New returns the authentication middleware.
func New(tokens TokenVerifier) fiber.Handler {
	if tokens == nil {
		panic("auth middleware: token verifier is nil")
	}

	return func(c fiber.Ctx) error {
		raw, ok := BearerToken(c)
		if !ok {
			return respond.Error(c, fiber.StatusUnauthorized, respond.CodeUnauthorized,
				"Access denied. No token provided.")
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, appauth.ErrTokenExpired) {
				reason = "expired"
			}

			log.Debug().Err(err).Str("reason", reason).Str("path", c.Path()).Msg("bearer token rejected")

			return respond.Error(c, fiber.StatusUnauthorized, respond.CodeInvalidToken, "Invalid token")
		}

		appauth.SetIdentity(c, appauth.Identity{UserID: claims.UserID, Role: claims.Role})

		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c fiber.Ctx) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(c.Get(fiber.HeaderAuthorization)), " ")
	// auth schemes are case-insensitive (RFC 7235)
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	return raw, true
}
