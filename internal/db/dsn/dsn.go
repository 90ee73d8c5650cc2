// Package dsn builds database connection strings from the configuration.
package dsn

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/moviecatalog/moviecatalog/internal/config"
)

const memory = ":memory:"

// MySQL builds the go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/name?parseTime=True.
func MySQL(db *config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s)/%s",
		db.User,
		db.Password,
		net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		db.Name,
	)

	if db.Extras != "" {
		out += "?" + db.Extras
	}

	return out
}

// Postgres builds a postgres:// connection URI. Extras is appended as query string, sslmode defaults to disable.
func Postgres(db *config.DB) string {
	q, err := url.ParseQuery(db.Extras)
	if err != nil {
		q = url.Values{}
	}

	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, strconv.Itoa(db.Port)),
		Path:     "/" + db.Name,
		RawQuery: q.Encode(),
	}

	return u.String()
}

// SQLite returns the database file, falling back to an in-memory database.
func SQLite(db *config.DB) string {
	p := strings.TrimSpace(db.Path)
	if p == "" {
		return memory
	}

	return p
}

// Create builds the connection string for the configured engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return MySQL(&cfg.DB)
	case config.EnginePostgres:
		return Postgres(&cfg.DB)
	default:
		return SQLite(&cfg.DB)
	}
}
