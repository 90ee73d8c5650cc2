package auth

import "github.com/gofiber/fiber/v3"

// localsIdentity is the fiber.Locals key of the authenticated identity.
const localsIdentity = "auth.identity"

// Identity is what a verified bearer token proves about the caller.
type Identity struct {
	UserID uint64
	Role   string
}

// SetIdentity stores the authenticated identity on the request.
func SetIdentity(c fiber.Ctx, id Identity) {
	c.Locals(localsIdentity, id)
}

// IdentityFromContext returns the identity stored by the authentication middleware.
func IdentityFromContext(c fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(localsIdentity).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, false
	}

	return id, true
}
