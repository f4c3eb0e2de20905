package notes

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-persistence-bun"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/schema"
)

const defaultPingTimeout = 5 * time.Second

// DBConfig configures OpenDatabase. postgres:// and postgresql:// DSNs go
// through pgx, anything else is handed to sqlite.
type DBConfig struct {
	DSN         string
	Debug       bool
	PingTimeout time.Duration
}

func (c DBConfig) GetDebug() bool { return c.Debug }

func (c DBConfig) GetDriver() string {
	if isPostgresDSN(c.DSN) {
		return persistence.DefaultDriver
	}
	return sqliteshim.ShimName
}

func (c DBConfig) GetServer() string   { return c.DSN }
func (c DBConfig) GetDatabase() string { return "" }

func (c DBConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return defaultPingTimeout
	}
	return c.PingTimeout
}

func (c DBConfig) GetOtelIdentifier() string { return "" }

// Database is the persistence client plus the schema migrations of this
// package.
type Database struct {
	*persistence.Client
	db *bun.DB
}

// OpenDatabase connects to cfg.DSN and registers the schema migrations.
// Call Migrate before using the repositories.
func OpenDatabase(cfg DBConfig, logger Logger) (*Database, error) {
	logger = normalizeLogger(logger)

	sqldb, dialect, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}

	persistence.RegisterModel(
		(*Admin)(nil),
		(*User)(nil),
		(*Note)(nil),
		(*Info)(nil),
		(*RevokedToken)(nil),
	)

	client, err := persistence.New(cfg, sqldb, dialect)
	if err != nil {
		sqldb.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to connect to database")
	}

	client.SetLogger(func(format string, a ...any) {
		logger.Debug(strings.TrimSpace(fmt.Sprintf(format, a...)))
	})

	migrations, err := SchemaMigrations()
	if err != nil {
		sqldb.Close()
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load migrations")
	}
	client.RegisterSQLMigrations(migrations)

	db, ok := client.DB().(*bun.DB)
	if !ok {
		sqldb.Close()
		return nil, goerrors.New("persistence client returned no bun database", goerrors.CategoryInternal)
	}

	return &Database{Client: client, db: db}, nil
}

// Bun returns the bun handle the repositories run on
func (d *Database) Bun() *bun.DB {
	return d.db
}

// Migrate applies the pending schema migrations
func (d *Database) Migrate(ctx context.Context) error {
	if err := d.Client.Migrate(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to migrate database")
	}
	return nil
}

// Close releases the connection pool
func (d *Database) Close() error {
	return d.db.Close()
}

func openSQL(cfg DBConfig) (*sql.DB, schema.Dialect, error) {
	if isPostgresDSN(cfg.DSN) {
		sqldb, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open postgres")
		}
		return sqldb, pgdialect.New(), nil
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to open sqlite")
	}
	// in-memory databases vanish with their last connection
	sqldb.SetMaxOpenConns(1)
	return sqldb, sqlitedialect.New(), nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
