package database

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/shule/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

func dsn(cfg core.DatabaseConfig, user, password, name string) string {
	sslMode := "require"
	if cfg.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")
	u := url.URL{
		Scheme:   cfg.Engine,
		User:     url.UserPassword(user, password),
		Host:     cfg.Address(),
		Path:     name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the application database and verifies the connection.
func Open(cfg core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Engine, dsn(cfg, cfg.User, cfg.Password, cfg.Name))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}
	return db, nil
}

// CreateIfNotExist connects with the admin credentials and creates the
// application role and database when they are missing. It is a no-op when no
// admin user is configured.
func CreateIfNotExist(cfg core.DatabaseConfig) error {
	if cfg.AdminUser == "" {
		return nil
	}
	admin, err := sqlx.Open(cfg.Engine, dsn(cfg, cfg.AdminUser, cfg.AdminPassword, cfg.Engine))
	if err != nil {
		return errors.Wrap(err, "opening admin connection")
	}
	defer admin.Close()

	var exists bool
	if err = admin.Get(&exists, "SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)", cfg.User); err != nil {
		return errors.Wrap(err, "checking role")
	}
	if !exists {
		if _, err = admin.Exec("CREATE ROLE " + pq.QuoteIdentifier(cfg.User) + " WITH LOGIN PASSWORD " + pq.QuoteLiteral(cfg.Password)); err != nil {
			return errors.Wrap(err, "creating role")
		}
	}
	if err = admin.Get(&exists, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Name); err != nil {
		return errors.Wrap(err, "checking database")
	}
	if !exists {
		if _, err = admin.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.Name) + " OWNER " + pq.QuoteIdentifier(cfg.User)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return errors.Wrap(goose.Up(db, "migrations"), "applying migrations")
}
