// Package me serves the authenticated caller's own authorization state.
package me

import (
	"github.com/gofiber/fiber/v3"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	// Path is the route group for the caller's own resources.
	Path = "/me"
	// PermissionsPath returns the caller's role and permissions.
	PermissionsPath = "/permissions"
)

// Service is the /me handler service.
type Service struct {
	deps *handler.Deps
}

// UserRef identifies the caller.
type UserRef struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PermissionsResponse is the body of GET /api/me/permissions.
type PermissionsResponse struct {
	User         UserRef       `json:"user"`
	Role         *auth.RoleRef `json:"role"`
	Permissions  []string      `json:"permissions"`
	IsSuperAdmin bool          `json:"isSuperAdmin"`
}

// Init registers the /me routes; all of them require a bearer token.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	group := router.Group(Path, deps.Authenticate)
	group.Get(PermissionsPath, s.Permissions)

	return nil
}

// Permissions returns the caller's live role and flattened permission names.
func (s *Service) Permissions(c fiber.Ctx) error {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return respond.Error(c, fiber.StatusUnauthorized, respond.CodeUnauthorized, "Access denied. No token provided.")
	}

	ctx := c.Context()

	user, err := s.deps.Users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return err
	}

	perms, err := s.deps.Auth.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return err
	}

	return respond.OK(c, PermissionsResponse{
		User:         UserRef{ID: user.ID, Username: user.Username, Email: user.Email},
		Role:         perms.Role,
		Permissions:  perms.Permissions,
		IsSuperAdmin: perms.IsSuperAdmin,
	})
}
