package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN              string // postgres:// or postgresql:// selects Postgres; anything else is a sqlite DSN
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DefaultSQLiteDSN keeps batch state in memory for the life of the process.
const DefaultSQLiteDSN = "file::memory:"

// DB is a database/sql handle plus the dialect it speaks.
type DB struct {
	SQL     *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	logger  *slog.Logger
}

// Open connects to Postgres through a pgx pool, or opens sqlite.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}
	if isPostgres(cfg.DSN) {
		return openPostgres(ctx, cfg, logger)
	}
	return openSQLite(ctx, cfg, logger)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dialect", DialectPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "usage-tracker"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", DialectPostgres)
	return &DB{SQL: stdlib.OpenDBFromPool(pool), Dialect: DialectPostgres, pool: pool, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultSQLiteDSN
	}
	logger.Info("connecting to database", "dialect", DialectSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	// a single connection: sqlite serializes writers anyway, and an in-memory
	// database lives only as long as its connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	logger.Info("successfully connected to database", "dialect", DialectSQLite)
	return &DB{SQL: db, Dialect: DialectSQLite, logger: logger}, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing database connections")
	if err := db.SQL.Close(); err != nil {
		db.logger.Error("failed to close database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	db.logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	db.logger.Debug("pinging database", "dialect", db.Dialect)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.SQL.PingContext(ctx); err != nil {
		db.logger.Error("database ping failed", "error", err)
		return err
	}
	db.logger.Debug("database ping successful")
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(q string) string {
	if db.Dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
