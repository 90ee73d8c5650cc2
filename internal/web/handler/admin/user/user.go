// Package user provides the admin API for listing users, assigning roles and deleting accounts.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	// Path is the base path for user management.
	Path = "/users"

	// QueryPage is the query parameter name for the current page index.
	QueryPage = "page"
	// QueryLimit is the query parameter name for the page size.
	QueryLimit = "limit"

	idPath   = "/:" + handler.ParamID
	rolePath = idPath + "/role"

	msgRoleAssigned = "User role updated"
	msgUserDeleted  = "User deleted"
)

// Service provides user administration.
type Service struct {
	deps *handler.Deps
}

type roleInput struct {
	RoleID *uint `json:"role_id" validate:"required"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// ListResponse is the body of GET /api/admin/users.
type ListResponse struct {
	Users      []auth.UserListEntry `json:"users"`
	Pagination Pagination           `json:"pagination"`
}

// Init registers routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	router.Get(Path,
		auth.RequireAnyPermission(deps.Auth, auth.PermUserView, auth.PermSystemRole),
		s.List,
	)
	router.Put(Path+rolePath,
		auth.RequirePermission(deps.Auth, auth.PermSystemRole),
		s.AssignRole,
	)
	router.Delete(Path+idPath,
		auth.RequirePermission(deps.Auth, auth.PermUserDelete),
		s.Delete,
	)

	return nil
}

// List shows users newest first with pagination.
func (s *Service) List(c fiber.Ctx) error {
	page := fiber.Query[int](c, QueryPage, 1)
	if page < 1 {
		page = 1
	}

	limit := fiber.Query[int](c, QueryLimit, auth.DefaultPageSize)
	if limit < 1 || limit > auth.MaxPageSize {
		limit = auth.DefaultPageSize
	}

	users, total, err := s.deps.Users.ListUsers(c.Context(), page, limit)
	if err != nil {
		return err
	}

	return respond.OK(c, ListResponse{
		Users: users,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// AssignRole sets the role of a user.
func (s *Service) AssignRole(c fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	var in roleInput
	if err = handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	err = s.deps.Auth.AssignRoleToUser(c.Context(), id, in.RoleID)
	if errors.Is(err, auth.ErrRoleNotFound) {
		return handler.BadRequest(respond.CodeInvalidRole, "Role does not exist")
	}

	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", id).Uint("role_id", *in.RoleID).Uint64("by", handler.Actor(c)).
		Msg("user role assigned")

	return respond.Message(c, msgRoleAssigned)
}

// Delete removes a user account.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.ID(c)
	if err != nil {
		return err
	}

	if err = s.deps.Users.DeleteUser(c.Context(), id); err != nil {
		return err
	}

	log.Info().Uint64("user_id", id).Uint64("by", handler.Actor(c)).Msg("user deleted")

	return respond.Message(c, msgUserDeleted)
}
