// Package migrations creates and versions the validator's DuckDB schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	stmts   []string
}

var all = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS validation_runs (
				id VARCHAR PRIMARY KEY,
				connection_name VARCHAR NOT NULL,
				variant VARCHAR NOT NULL,
				target_url VARCHAR NOT NULL,
				deployment_name VARCHAR NOT NULL,
				status VARCHAR NOT NULL,
				stages VARCHAR NOT NULL,
				started_at TIMESTAMP NOT NULL,
				finished_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS connection_health (
				connection_name VARCHAR PRIMARY KEY,
				variant VARCHAR NOT NULL,
				target_url VARCHAR NOT NULL,
				last_status VARCHAR NOT NULL,
				last_latency_ms BIGINT NOT NULL,
				consecutive_failures INTEGER NOT NULL,
				last_checked_at TIMESTAMP NOT NULL
			)`,
		},
	},
}

const (
	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT now()
	)`
	queryCurrentVersion = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`
	queryRecordVersion  = `INSERT INTO schema_migrations (version) VALUES (?)`
)

// Run applies all pending migrations.
func Run(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, queryCurrentVersion).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range all {
		if m.version <= current {
			continue
		}
		for _, stmt := range m.stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
		}
		if _, err := db.ExecContext(ctx, queryRecordVersion, m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}
	return nil
}
