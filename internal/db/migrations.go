/*-------------------------------------------------------------------------
 *
 * migrations.go
 *    SQL migration runner
 *
 * Applies *.sql files from a directory in lexical order, tracking the
 * applied set in sysafari_approval.schema_migrations.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/migrations.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

type MigrationRunner struct {
	db  *sqlx.DB
	dir string
}

func NewMigrationRunner(db *sqlx.DB, dir string) (*MigrationRunner, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path %s is not a directory", dir)
	}
	return &MigrationRunner{db: db, dir: dir}, nil
}

/* Run applies all pending migrations */
func (m *MigrationRunner) Run(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE SCHEMA IF NOT EXISTS sysafari_approval`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sysafari_approval.schema_migrations (
			name text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		applied, err := m.isApplied(ctx, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join(m.dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		tx, err := m.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sysafari_approval.schema_migrations (name) VALUES ($1)`, name); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", name, err)
		}

		metrics.InfoWithContext(ctx, "Applied migration", map[string]interface{}{
			"migration": name,
		})
	}

	return nil
}

func (m *MigrationRunner) isApplied(ctx context.Context, name string) (bool, error) {
	var count int
	err := m.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sysafari_approval.schema_migrations WHERE name = $1`, name)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return count > 0, nil
}
