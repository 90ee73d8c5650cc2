// Package role provides the admin API for roles, their grants and the permission catalog.
package role

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	// Path is the base path for role management.
	Path = "/roles"
	// PermissionsPath lists the permission catalog.
	PermissionsPath = "/permissions"

	idPath     = "/:" + handler.ParamID
	grantsPath = idPath + "/permissions"

	msgRoleUpdated = "Role updated"
	msgRoleDeleted = "Role deleted"
	msgGrantsSaved = "Role permissions updated"
)

// Service provides CRUD operations for roles.
type Service struct {
	deps *handler.Deps
}

// Init registers routes. Every route requires system:role.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps
	guard := auth.RequirePermission(deps.Auth, auth.PermSystemRole)

	router.Get(Path, guard, s.List)
	router.Post(Path, guard, s.Create)
	router.Get(Path+idPath, guard, s.Get)
	router.Put(Path+idPath, guard, s.Update)
	router.Put(Path+grantsPath, guard, s.AssignPermissions)
	router.Delete(Path+idPath, guard, s.Delete)
	router.Get(PermissionsPath, guard, s.Permissions)

	return nil
}

// List returns all roles with permission and user counts.
func (s *Service) List(c fiber.Ctx) error {
	roles, err := s.deps.Registry.ListRoles(c.Context())
	if err != nil {
		return err
	}

	return respond.OK(c, roles)
}

// Get returns one role with its granted permissions.
func (s *Service) Get(c fiber.Ctx) error {
	id, err := handler.UintID(c)
	if err != nil {
		return err
	}

	role, err := s.deps.Registry.GetRole(c.Context(), id)
	if err != nil {
		return err
	}

	return respond.OK(c, role)
}

// Create adds a custom role.
func (s *Service) Create(c fiber.Ctx) error {
	var in createInput
	if err := handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	role, err := s.deps.Registry.CreateRole(c.Context(), auth.RoleInput{
		Name:          in.Name,
		DisplayName:   in.DisplayName,
		Description:   in.Description,
		PermissionIDs: in.Permissions,
	})
	if err != nil {
		return err
	}

	log.Info().Uint("role_id", role.ID).Str("name", role.Name).Uint64("by", handler.Actor(c)).Msg("role created")

	return respond.Created(c, role)
}

// Update edits a custom role and optionally replaces its grants.
func (s *Service) Update(c fiber.Ctx) error {
	id, err := handler.UintID(c)
	if err != nil {
		return err
	}

	var in updateInput
	if err = handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	if _, err = s.deps.Registry.UpdateRole(c.Context(), id, auth.RoleUpdate{
		DisplayName:   in.DisplayName,
		Description:   in.Description,
		PermissionIDs: in.Permissions,
	}); err != nil {
		return err
	}

	log.Info().Uint("role_id", id).Uint64("by", handler.Actor(c)).Msg("role updated")

	return respond.Message(c, msgRoleUpdated)
}

// AssignPermissions replaces the grant set of a custom role.
func (s *Service) AssignPermissions(c fiber.Ctx) error {
	id, err := handler.UintID(c)
	if err != nil {
		return err
	}

	var in grantInput
	if err = handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	if err = s.deps.Registry.AssignPermissions(c.Context(), id, in.Permissions); err != nil {
		return err
	}

	log.Info().Uint("role_id", id).Int("grants", len(in.Permissions)).Uint64("by", handler.Actor(c)).
		Msg("role permissions replaced")

	return respond.Message(c, msgGrantsSaved)
}

// Delete removes a custom role no user is assigned to.
func (s *Service) Delete(c fiber.Ctx) error {
	id, err := handler.UintID(c)
	if err != nil {
		return err
	}

	if err = s.deps.Registry.DeleteRole(c.Context(), id); err != nil {
		return err
	}

	log.Info().Uint("role_id", id).Uint64("by", handler.Actor(c)).Msg("role deleted")

	return respond.Message(c, msgRoleDeleted)
}

// Permissions lists the catalog, flat and grouped by module.
func (s *Service) Permissions(c fiber.Ctx) error {
	perms, err := s.deps.Registry.ListPermissions(c.Context())
	if err != nil {
		return err
	}

	grouped := make(map[string][]auth.PermissionSummary)
	for _, p := range perms {
		grouped[p.Module] = append(grouped[p.Module], p)
	}

	return respond.OK(c, PermissionCatalog{Permissions: perms, Grouped: grouped})
}
