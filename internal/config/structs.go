package config

import (
	"time"

	"github.com/moviecatalog/moviecatalog/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Bootstrap Bootstrap
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool           // disable recover middleware
	Port           int            // listening port for the webserver
	ShutDownTime   int            // wait time for shutdown
	URL            string         // base url for the webserver
	LoginRateLimit LoginRateLimit // brute force protection for the login endpoint
}

// LoginRateLimit limits login attempts per client IP.
type LoginRateLimit struct {
	Enabled    bool
	Max        int           // attempts per window
	Expiration time.Duration // window length
	Table      string        // storage table when backed by the database
}

// Auth holds bearer token settings.
type Auth struct {
	JWTSecret   string        // HS256 signing key, required outside dev mode
	JWTIssuer   string        // iss claim, verified when set
	TokenExpiry time.Duration // token lifetime, defaults to 168h
}

// Bootstrap describes the administrator created on first start when the users table is empty.
type Bootstrap struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Enabled reports whether a bootstrap administrator is configured.
func (b Bootstrap) Enabled() bool {
	return b.AdminEmail != "" && b.AdminPassword != ""
}
