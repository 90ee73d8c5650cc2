// Package web wires the fiber application: middleware, routes and graceful shutdown.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
	accesslog "github.com/moviecatalog/moviecatalog/internal/logger/adapter/fiber"
	"github.com/moviecatalog/moviecatalog/internal/web/handler"
	"github.com/moviecatalog/moviecatalog/internal/web/handler/account"
	"github.com/moviecatalog/moviecatalog/internal/web/handler/admin/role"
	"github.com/moviecatalog/moviecatalog/internal/web/handler/admin/user"
	"github.com/moviecatalog/moviecatalog/internal/web/handler/login"
	"github.com/moviecatalog/moviecatalog/internal/web/handler/me"
	authmw "github.com/moviecatalog/moviecatalog/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes Prometheus metrics.
	MetricsPath = "/metrics"
	// AdminPath groups the administration API below /api.
	AdminPath = "/admin"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	deps         *handler.Deps
}

// Options carries the optional collaborators of the web service.
type Options struct {
	// LimiterStorage backs the login rate limiter; nil keeps it in memory.
	LimiterStorage fiber.Storage
	// FastShutDown skips the load balancer drain wait.
	FastShutDown bool
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	s.alive.Store(true)

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: !s.cfg.DevMode})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown drains, then stops the http server.
func (s *Service) Shutdown() {
	// checkalive fails first so load balancers stop routing here
	s.alive.Store(false)

	if !s.fastShutDown && s.cfg.Webserver.ShutDownTime > 0 {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, tokens *auth.TokenManager, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	if tokens == nil {
		return nil, errors.New("token manager cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New(recoverer.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		UserID: func(c fiber.Ctx) (uint64, bool) {
			id, ok := auth.IdentityFromContext(c)

			return id.UserID, ok
		},
	}))

	s := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: opts.FastShutDown || cfg.DevMode,
		deps: &handler.Deps{
			Cfg:          cfg,
			Users:        auth.NewLocalProvider(db),
			Registry:     auth.NewRegistry(db),
			Auth:         auth.NewService(db),
			Tokens:       tokens,
			Validator:    handler.NewValidator(),
			Authenticate: authmw.New(tokens),
		},
	}
	s.alive.Store(true)

	app.Get(CheckAlivePath, s.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if err := s.routes(opts); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) routes(opts Options) error {
	api := s.App.Group(handler.APIPrefix)
	admin := api.Group(AdminPath, s.deps.Authenticate)

	mounts := []struct {
		router  fiber.Router
		service handler.Service
	}{
		{api, &login.Service{Storage: opts.LimiterStorage}},
		{api, &me.Service{}},
		{api, &account.Service{}},
		{admin, &role.Service{}},
		{admin, &user.Service{}},
	}

	for _, m := range mounts {
		if err := m.service.Init(m.router, s.deps); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}

func (s *Service) checkAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}
