package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/moviecatalog/moviecatalog/internal/auth"
)

// Actor returns the authenticated user ID, 0 when unauthenticated.
func Actor(c fiber.Ctx) uint64 {
	id, _ := auth.IdentityFromContext(c)

	return id.UserID
}
