package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrJWTSecretEmpty error if no token signing key is configured outside dev mode.
	ErrJWTSecretEmpty = errors.New("config auth.jwtsecret can not be empty")

	// ErrJWTSecretWeak error if the token signing key is too short or a known placeholder outside dev mode.
	ErrJWTSecretWeak = errors.New("config auth.jwtsecret must be at least 32 bytes and not a placeholder")

	// ErrUnknownGormEngine error if db.gormengine is not one of mysql, postgres, sqlite.
	ErrUnknownGormEngine = errors.New("config db.gormengine must be mysql, postgres or sqlite")
)
