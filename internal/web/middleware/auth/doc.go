// Package auth provides the bearer token authentication middleware of the API.
//
// The middleware performs the following tasks:
//   - Reads the "Authorization: Bearer <token>" header
//   - Verifies signature and expiry through the token manager
//   - Stores the verified identity in fiber.Locals for the authorization guards
//   - Rejects the request with 401 before any handler runs when any step fails
//
// Usage:
//
//	api.Use(authmiddleware.New(tokens))
//
// Authorization (which permissions a route needs) is handled separately by
// auth.RequirePermission and auth.RequireAnyPermission.
package auth
