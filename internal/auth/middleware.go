package auth

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

// RequirePermission creates Fiber middleware that requires a specific permission.
// It expects the authentication middleware to have run before it.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return RequireAnyPermission(authService, permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	if len(permissions) == 0 {
		panic("auth: RequireAnyPermission needs at least one permission")
	}

	return func(c fiber.Ctx) error {
		id, ok := IdentityFromContext(c)
		if !ok {
			return respond.Error(c, fiber.StatusUnauthorized, respond.CodeUnauthorized,
				"Access denied. No token provided.")
		}

		err := authService.Authorize(c.Context(), id.UserID, permissions...)
		if err == nil {
			return c.Next()
		}

		var denied *PermissionDeniedError

		switch {
		case errors.As(err, &denied):
			log.Warn().Uint64("user_id", id.UserID).Strs("permissions", permissions).
				Msg("User lacks required permission")

			return respond.Error(c, fiber.StatusForbidden, respond.CodeForbidden, denied.Error())
		case errors.Is(err, ErrNoRoleAssigned):
			log.Warn().Uint64("user_id", id.UserID).Msg("User has no role assigned")

			return respond.Error(c, fiber.StatusForbidden, respond.CodeForbidden, "No role assigned")
		case errors.Is(err, ErrUserNotFound):
			return respond.Error(c, fiber.StatusUnauthorized, respond.CodeUnauthorized, "User no longer exists")
		default:
			log.Error().Err(err).Uint64("user_id", id.UserID).Strs("permissions", permissions).
				Msg("Failed to check permissions")

			return respond.Error(c, fiber.StatusInternalServerError, respond.CodeInternal, "Internal Server Error")
		}
	}
}
