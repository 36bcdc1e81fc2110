// Package database opens the storage handle shared by every request.
//
// With the postgres driver it builds a pgx connection pool (traced by New
// Relic and, in local runs, logged through zerolog), exposes it as a
// *sql.DB and hands that to gorm. The sqlite driver is a self-contained
// fallback for local runs and tests.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/go-products/internal/config"
	loggerConfig "github.com/deppfellow/go-products/internal/logger"
	"github.com/glebarez/sqlite"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DatabasePingTimeout is how long, in seconds, startup waits for the
// first ping.
const DatabasePingTimeout = 10

// Database owns the gorm handle and what sits under it. Pool is nil with
// the sqlite driver.
type Database struct {
	DB   *gorm.DB
	Pool *pgxpool.Pool

	sqlDB *sql.DB
	cfg   *config.Config
	log   *zerolog.Logger
}

// multiTracer fans pgx query events out to several tracers, since pgx
// only has one tracer slot.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// DSN builds a postgres URL from cfg, escaping the password.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	encodedPassword := url.QueryEscape(cfg.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		encodedPassword,
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// New opens the configured database.
//
// An unreachable server is not fatal: the failed ping is logged and the
// returned Database reconnects lazily, so requests fail until the server
// comes up. Only configuration mistakes are returned as errors.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	gormConfig := &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               loggerConfig.NewGormLogger(*logger, cfg.Observability.Logging.SlowQueryThreshold),
	}

	database := &Database{
		cfg: cfg,
		log: logger,
	}

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := newPool(cfg, logger, loggerService)
		if err != nil {
			return nil, err
		}
		database.Pool = pool
		database.sqlDB = stdlib.OpenDBFromPool(pool)

		database.DB, err = gorm.Open(postgres.New(postgres.Config{Conn: database.sqlDB}), gormConfig)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to open gorm on pgx pool: %w", err)
		}

	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
		}
		// SQLite serializes writers, and every ":memory:" connection
		// would otherwise see its own empty database.
		sqlDB.SetMaxOpenConns(1)
		database.DB = db
		database.sqlDB = sqlDB

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		logger.Error().Err(err).
			Str("driver", cfg.Database.Driver).
			Msg("failed to connect to the database, continuing without it")
		return database, nil
	}

	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to the database")

	return database, nil
}

func newPool(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*pgxpool.Pool, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	if loggerService != nil && loggerService.GetApplication() != nil {
		pgxPoolConfig.ConnConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL logging is far too noisy outside local runs.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if pgxPoolConfig.ConnConfig.Tracer != nil {
			pgxPoolConfig.ConnConfig.Tracer = &multiTracer{
				tracers: []any{pgxPoolConfig.ConnConfig.Tracer, localTracer},
			}
		} else {
			pgxPoolConfig.ConnConfig.Tracer = localTracer
		}
	}

	// Connections are opened on first use, so this does not touch the network.
	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	return pool, nil
}

// Ping checks that the database answers.
func (db *Database) Ping(ctx context.Context) error {
	if db.Pool != nil {
		return db.Pool.Ping(ctx)
	}
	return db.sqlDB.PingContext(ctx)
}

// Close releases every connection.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")

	if err := db.sqlDB.Close(); err != nil {
		return err
	}
	if db.Pool != nil {
		db.Pool.Close()
	}
	return nil
}
