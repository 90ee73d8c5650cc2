// Package config handles input from etc/main.toml and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every single-key environment override, e.g. MOVIE_CATALOG_AUTH_JWTSECRET.
	EnvPrefix = "MOVIE_CATALOG"

	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "MOVIE_CATALOG_CONFIG_JSON"

	// DefaultShutDownTime is the graceful shutdown wait in seconds.
	DefaultShutDownTime = 5

	// DefaultTokenExpiry is the bearer token lifetime.
	DefaultTokenExpiry = 7 * 24 * time.Hour

	// MinJWTSecretLen is the shortest HS256 signing key accepted outside dev mode.
	MinJWTSecretLen = 32

	masked = "******"
)

var placeholderSecrets = []string{"change-me", "changeme", "replace-me", "your-secret"}

// Override adjusts the configuration after it was read and before it is validated.
type Override func(*Config)

// ReadConfig from config file.
func ReadConfig(path string, overrides ...Override) (Config, error) {
	var (
		c   Config
		err error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	// single keys from env, e.g. MOVIE_CATALOG_DB_PASSWORD
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	if configAsJSON := os.Getenv(EnvConfigJSON); configAsJSON != "" {
		c, err = decodeAndMergeConfig(c, configAsJSON)
		if err != nil {
			return c, err
		}
	}

	for _, o := range overrides {
		o(&c)
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "Movie Catalog")
	v.SetDefault("devmode", false)
	v.SetDefault("webserver.port", 8080)
	v.SetDefault("webserver.shutdowntime", DefaultShutDownTime)
	v.SetDefault("webserver.loginratelimit.enabled", true)
	v.SetDefault("webserver.loginratelimit.max", 10)
	v.SetDefault("webserver.loginratelimit.expiration", time.Minute)
	v.SetDefault("webserver.loginratelimit.table", "login_limiter")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.jwtissuer", "movie-catalog")
	v.SetDefault("auth.tokenexpiry", DefaultTokenExpiry)
	v.SetDefault("db.gormengine", EngineSQLite)
	v.SetDefault("db.password", "")
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("bootstrap.adminusername", "admin")
	v.SetDefault("bootstrap.adminemail", "")
	v.SetDefault("bootstrap.adminpassword", "")
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// Masked returns a copy with secrets replaced, suitable for printing.
func (c *Config) Masked() Config {
	out := *c

	if out.DB.Password != "" {
		out.DB.Password = masked
	}

	if out.Auth.JWTSecret != "" {
		out.Auth.JWTSecret = masked
	}

	if out.Bootstrap.AdminPassword != "" {
		out.Bootstrap.AdminPassword = masked
	}

	return out
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	// a missing signing key is only tolerated in dev mode, where the daemon generates one
	if !c.DevMode {
		if err := validateJWTSecret(c.Auth.JWTSecret); err != nil {
			return errors.Wrap(err, invalidErrMessage)
		}
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineSQLite
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = DefaultShutDownTime
	}

	if c.Auth.TokenExpiry <= 0 {
		c.Auth.TokenExpiry = DefaultTokenExpiry
	}

	return nil
}

func validateJWTSecret(secret string) error {
	if secret == "" {
		return ErrJWTSecretEmpty
	}

	if len(secret) < MinJWTSecretLen {
		return ErrJWTSecretWeak
	}

	lower := strings.ToLower(secret)
	for _, p := range placeholderSecrets {
		if strings.Contains(lower, p) {
			return ErrJWTSecretWeak
		}
	}

	return nil
}
