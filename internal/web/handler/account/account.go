// Package account serves the caller's own profile and password.
package account

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/db/models"
	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	// Path is the route group of the self-service endpoints.
	Path = "/users"
	// ProfilePath reads and updates the caller's profile.
	ProfilePath = "/profile"
	// PasswordPath changes the caller's password.
	PasswordPath = "/password"

	msgPasswordChanged = "Password updated successfully"
)

// Service is the self-service account handler.
type Service struct {
	deps *handler.Deps
}

// Profile is the caller's account as shown to themselves.
type Profile struct {
	ID       uint64  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
	Role     string  `json:"role"`
}

type profileInput struct {
	Username *string `json:"username" validate:"omitnil,min=3,max=50"`
	Avatar   *string `json:"avatar"   validate:"omitnil,max=255"`
}

type passwordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

// Init registers the account routes; all of them require a bearer token.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	group := router.Group(Path, deps.Authenticate)
	group.Get(ProfilePath, s.GetProfile)
	group.Put(ProfilePath, s.UpdateProfile)
	group.Put(PasswordPath, s.ChangePassword)

	return nil
}

// GetProfile returns the caller's profile.
func (s *Service) GetProfile(c fiber.Ctx) error {
	user, err := s.deps.Users.GetUserByID(c.Context(), handler.Actor(c))
	if err != nil {
		return err
	}

	return respond.OK(c, newProfile(user))
}

// UpdateProfile changes the caller's username and avatar.
func (s *Service) UpdateProfile(c fiber.Ctx) error {
	var in profileInput
	if err := handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	user, err := s.deps.Users.UpdateProfile(c.Context(), handler.Actor(c), auth.ProfileUpdate{
		Username: in.Username,
		Avatar:   in.Avatar,
	})
	if err != nil {
		return err
	}

	return respond.OK(c, newProfile(user))
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *Service) ChangePassword(c fiber.Ctx) error {
	var in passwordInput
	if err := handler.BindJSON(c, s.deps.Validator, &in); err != nil {
		return err
	}

	id := handler.Actor(c)

	err := s.deps.Users.ChangePassword(c.Context(), id, in.OldPassword, in.NewPassword)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return handler.BadRequest(respond.CodeInvalidPassword, "Old password is incorrect")
	}

	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", id).Msg("password changed")

	return respond.Message(c, msgPasswordChanged)
}

func newProfile(u *models.User) Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Role:     string(u.LegacyRole),
	}
}
