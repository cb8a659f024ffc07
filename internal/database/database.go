package database

import (
	"context"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"blogstats/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const schemaFile = "migrations/001_create_tables.sql"

type DB struct {
	*sqlx.DB
}

// ConnectDB opens a pool with the configured driver ("postgres" for lib/pq, "pgx" for pgx stdlib).
func ConnectDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	log.WithFields(log.Fields{
		"driver": cfg.DB.Driver,
		"host":   cfg.DB.DbHOST,
		"dbname": cfg.DB.DbNAME,
	}).Info("connecting to database")

	db, err := sqlx.ConnectContext(ctx, cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	dbStruct := &DB{db}
	if err := dbStruct.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

// ApplySchema creates the blog tables if they do not exist yet.
func (db *DB) ApplySchema(ctx context.Context) error {
	schemaSQL, err := migrations.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.WithField("file", schemaFile).Debug("schema applied")
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	return db.PingContext(ctx)
}
