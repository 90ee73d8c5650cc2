// Package daemon assembles and runs the movie catalog identity service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v3"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	storagepostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
	"github.com/moviecatalog/moviecatalog/internal/db/dsn"
	"github.com/moviecatalog/moviecatalog/internal/db/models"
	"github.com/moviecatalog/moviecatalog/internal/logger/adapter/stdlogger"
	"github.com/moviecatalog/moviecatalog/internal/uniuri"
	"github.com/moviecatalog/moviecatalog/internal/web"
)

const (
	devSigningKeyLen = 64
	slowQuery        = 200 * time.Millisecond
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
	limiter    fiber.Storage
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
	}()

	go d.webService.WaitShutdown()

	err := <-errc

	d.close()

	return err
}

func (d *Daemon) close() {
	if d.limiter != nil {
		if err := d.limiter.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close rate limiter storage")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// New opens the database, migrates and seeds it, and builds the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	if err = Seed(ctx, cfg, db); err != nil {
		return nil, err
	}

	tokens, err := NewTokenManager(cfg)
	if err != nil {
		return nil, err
	}

	limiter := newLimiterStorage(cfg)

	opts := web.Options{FastShutDown: cfg.DevMode}
	if limiter != nil {
		opts.LimiterStorage = limiter
	}

	webService, err := web.New(cfg, db, tokens, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create web service: %w", err)
	}

	return &Daemon{
		cfg:        cfg,
		db:         db,
		webService: webService,
		limiter:    limiter,
	}, nil
}

// OpenDB opens the configured gorm engine with SQL logging routed to zerolog.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.MySQL(&cfg.DB))
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Postgres(&cfg.DB))
	case config.EngineSQLite, "":
		dialector = sqlite.Open(dsn.SQLite(&cfg.DB))
	default:
		return nil, config.ErrUnknownGormEngine
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(
			stdlogger.New(stdlogger.WithComponent("gorm")),
			gormlogger.Config{
				SlowThreshold:             slowQuery,
				LogLevel:                  gormLogLevel(cfg.DB.LogLevel),
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database (%s): %w", cfg.DB.GormEngine, err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite || cfg.DB.GormEngine == "" {
		// sqlite allows a single writer
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}

		if err = db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// NewTokenManager builds the token manager; in dev mode a missing key is replaced by a random one.
func NewTokenManager(cfg *config.Config) (*auth.TokenManager, error) {
	secret := cfg.Auth.JWTSecret

	if secret == "" && cfg.DevMode {
		var err error

		if secret, err = uniuri.NewLen(devSigningKeyLen); err != nil {
			return nil, fmt.Errorf("failed to generate dev signing key: %w", err)
		}

		log.Warn().Msg("dev mode: no auth.jwtsecret configured, using a random signing key; tokens die with the process")
	}

	tokens, err := auth.NewTokenManager(secret, cfg.Auth.JWTIssuer, cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	return tokens, nil
}

// newLimiterStorage shares login rate limit counters through the database
// for mysql and postgres; sqlite keeps them in memory.
func newLimiterStorage(cfg *config.Config) fiber.Storage {
	rl := cfg.Webserver.LoginRateLimit
	if !rl.Enabled {
		return nil
	}

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return storagemysql.New(storagemysql.Config{
			ConnectionURI: dsn.MySQL(&cfg.DB),
			Table:         rl.Table,
		})
	case config.EnginePostgres:
		return storagepostgres.New(storagepostgres.Config{
			ConnectionURI: dsn.Postgres(&cfg.DB),
			Table:         rl.Table,
		})
	default:
		return nil
	}
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
