// Package login provides the registration and login endpoints issuing bearer tokens.
package login

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/rs/zerolog/log"

	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	// Path is the route group of the auth endpoints.
	Path = "/auth"
	// RegisterPath creates an account.
	RegisterPath = "/register"
	// LoginPath exchanges credentials for a token.
	LoginPath = "/login"
)

// Service is the login handler service.
type Service struct {
	deps *handler.Deps

	// Storage backs the login rate limiter; nil keeps counters in memory.
	Storage fiber.Storage
}

// Init registers the auth routes below router.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || !deps.Valid() {
		return handler.ErrNilDeps
	}

	s.deps = deps

	group := router.Group(Path)
	group.Post(RegisterPath, s.Register)
	group.Post(LoginPath, s.loginLimiter(), s.Login)

	return nil
}

// loginLimiter throttles login attempts per client IP.
func (s *Service) loginLimiter() fiber.Handler {
	rl := s.deps.Cfg.Webserver.LoginRateLimit
	if !rl.Enabled {
		return func(c fiber.Ctx) error { return c.Next() }
	}

	attempts := rl.Max
	if attempts <= 0 {
		attempts = 10
	}

	exp := rl.Expiration
	if exp <= 0 {
		exp = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:        attempts,
		Expiration: exp,
		Storage:    s.Storage,
		KeyGenerator: func(c fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			log.Warn().Str("ip", c.IP()).Msg("login rate limit reached")

			return respond.Error(c, fiber.StatusTooManyRequests, respond.CodeTooManyRequests,
				"Too many login attempts, try again later")
		},
	})
}

// Register creates an account and returns a token for it.
func (s *Service) Register(c fiber.Ctx) error {
	var req RegisterRequest
	if err := handler.BindJSON(c, s.deps.Validator, &req); err != nil {
		return err
	}

	user, err := s.deps.Users.Register(c.Context(),
		strings.TrimSpace(req.Username), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return err
	}

	token, exp, err := s.deps.Tokens.Issue(user.ID, string(user.LegacyRole))
	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user registered")

	return respond.Created(c, TokenResponse{Token: token, ExpiresAt: exp, User: newUserView(user)})
}

// Login verifies credentials and returns a token with the caller's live permissions.
func (s *Service) Login(c fiber.Ctx) error {
	var req LoginRequest
	if err := handler.BindJSON(c, s.deps.Validator, &req); err != nil {
		return err
	}

	ctx := c.Context()

	user, err := s.deps.Users.Authenticate(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return err
	}

	if err = s.deps.Users.RecordLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Uint64("user_id", user.ID).Msg("failed to record last login")
	}

	perms, err := s.deps.Auth.GetUserPermissions(ctx, user.ID)
	if err != nil {
		return err
	}

	token, exp, err := s.deps.Tokens.Issue(user.ID, string(user.LegacyRole))
	if err != nil {
		return err
	}

	out := SessionUser{
		UserView:     newUserView(user),
		Permissions:  perms.Permissions,
		IsSuperAdmin: perms.IsSuperAdmin,
	}

	if perms.Role != nil {
		out.RoleID = &perms.Role.ID

		name := perms.Role.DisplayName
		if name == "" {
			name = perms.Role.Name
		}

		out.RoleName = &name
	}

	log.Info().Uint64("user_id", user.ID).Msg("user logged in")

	return respond.OK(c, TokenResponse{Token: token, ExpiresAt: exp, User: out})
}
