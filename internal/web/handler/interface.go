package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
)

// Deps are the shared services handed to every handler.
type Deps struct {
	Cfg       *config.Config
	Users     *auth.LocalProvider
	Registry  *auth.Registry
	Auth      *auth.Service
	Tokens    *auth.TokenManager
	Validator *validator.Validate

	// Authenticate is the bearer token middleware guarding non-public routes.
	Authenticate fiber.Handler
}

// Valid reports whether all dependencies are set.
func (d *Deps) Valid() bool {
	return d != nil && d.Cfg != nil && d.Users != nil && d.Registry != nil && d.Auth != nil &&
		d.Tokens != nil && d.Validator != nil && d.Authenticate != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, deps *Deps) error
}
