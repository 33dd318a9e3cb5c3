package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/baechuer/docvault/internal/logger"
)

// Pool limits for the shared *sql.DB. Users and documents are served from
// the same pool.
const (
	dbMaxOpenConns    = 20
	dbMaxIdleConns    = 10
	dbConnMaxIdleTime = 5 * time.Minute
	dbConnMaxLifetime = time.Hour
	dbPingTimeout     = 3 * time.Second
)

var errEmptyDSN = errors.New("DB_ADDR is empty")

// NewDB opens the pgx driver through database/sql and refuses to return a
// pool it could not ping.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errEmptyDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxIdleTime(dbConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if debug {
		logServerInfo(ctx, db)
	}
	return db, nil
}

func logServerInfo(ctx context.Context, db *sql.DB) {
	var user, name, version string
	err := db.QueryRowContext(ctx,
		`SELECT current_user, current_database(), current_setting('server_version')`,
	).Scan(&user, &name, &version)
	if err != nil {
		logger.Logger.Debug().Err(err).Msg("db server info unavailable")
		return
	}
	logger.Logger.Info().
		Str("db_user", user).
		Str("db_name", name).
		Str("version", version).
		Msg("db connected")
}
